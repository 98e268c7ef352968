package cli

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gamify/internal/gameapi"
	"github.com/roach88/gamify/internal/progression"
)

func TestRenderStatusGolden(t *testing.T) {
	totals := map[string]int{"ilim": 30, "temizlik": 60}
	st := gameapi.Status{
		Overall: progression.OverallLevel(totals),
		Skills: []gameapi.SkillStatus{
			{Skill: "ilim", Level: progression.SkillLevel(30)},
			{Skill: "temizlik", Level: progression.SkillLevel(60)},
		},
		Prestige: 60,
		Tier:     progression.PrestigeTier(60),
		Earned:   1,
		Total:    3,
	}

	buf := &bytes.Buffer{}
	require.NoError(t, renderStatus(buf, st))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "status", buf.Bytes())
}

func TestRenderStatusEmpty(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, renderStatus(buf, gameapi.Status{Tier: progression.PrestigeTier(0)}))
	assert.Contains(t, buf.String(), "No skills yet.")
	assert.Contains(t, buf.String(), "Acemi")
}

func TestSkillTitle(t *testing.T) {
	assert.Equal(t, "İlim", skillTitle("ilim"))
	assert.Equal(t, "Temizlik", skillTitle("temizlik"))
	assert.Equal(t, "Kişisel Gelişim", skillTitle("kişisel gelişim"))
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "[--------------------]", progressBar(0))
	assert.Equal(t, "[##########----------]", progressBar(50))
	assert.Equal(t, "[####################]", progressBar(100))
	assert.Equal(t, "[####################]", progressBar(140))
	assert.Equal(t, "[--------------------]", progressBar(-5))
}
