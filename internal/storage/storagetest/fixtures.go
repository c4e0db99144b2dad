// Package storagetest holds fixtures shared by the snapshot store tests
package storagetest

import (
	"time"

	"github.com/mcoot/navalcombat/internal/dependencies/random"
	"github.com/mcoot/navalcombat/internal/model"
	"github.com/mcoot/navalcombat/internal/services/placer"
	"github.com/mcoot/navalcombat/internal/services/rules"
	"github.com/mcoot/navalcombat/internal/testutil"
)

// SavedAt is the timestamp stamped on SampleSnapshot
var SavedAt = time.Date(2026, 5, 17, 9, 30, 0, 0, time.UTC)

// SampleSnapshot returns an in-progress game with misses, hits and one sunk
// ship on the player board, and a shot at (col 8, row 1) on the CPU board
func SampleSnapshot() *model.Snapshot {
	logger := testutil.NopLogger()
	engine := rules.NewEngine(placer.New(random.NewSeeded(2026), logger), logger)
	engine.SetNickname("Nemo")
	if err := engine.AutoPlacePlayerFleet(); err != nil {
		panic(err)
	}
	if err := engine.Start(); err != nil {
		panic(err)
	}

	fleet := engine.Fleet(model.SidePlayer)
	carrier := fleet[0].Cells[0]
	frigate := fleet[len(fleet)-1].Cells[0]
	engine.Fire(carrier.Col, carrier.Row, model.SideCPU)
	engine.Fire(frigate.Col, frigate.Row, model.SideCPU)

	occupied := engine.Occupancy(model.SidePlayer)
	misses := 0
	for row := 0; row < model.GridRows && misses < 3; row++ {
		for col := model.GridCols - 1; col >= 0 && misses < 3; col-- {
			if !occupied[row][col] {
				engine.Fire(col, row, model.SideCPU)
				misses++
			}
		}
	}

	engine.Fire(8, 1, model.SidePlayer)
	engine.MarkFirstPlayerMove()
	return engine.Snapshot(SavedAt)
}
