// Package gamefile loads game definitions written in CUE.
//
// A definition declares rewards, achievements, recurring templates and
// scripts by name:
//
//	reward: Cinema: {
//		description: "a night out"
//		criteria:    "temizlik:100,egzersiz:50"
//	}
//
//	achievement: Century: {
//		criteria: "egzersiz:100"
//		prestige: 25
//	}
//
//	recurring: Walk: points: "saglik:10"
//
//	script: streak: {
//		events: ["onTaskComplete"]
//		file:   "streak.lua"
//	}
//
// Files are unified with an embedded schema before compilation, so unknown
// fields and wrong types fail with a source position. Apply merges a
// compiled Definition into a running game by name.
package gamefile
