package factory

import (
	"time"

	"github.com/mcoot/navalcombat/internal/dependencies/mocks"
	"github.com/mcoot/navalcombat/internal/dependencies/random"
	"github.com/mcoot/navalcombat/internal/storage/memory"
	"github.com/mcoot/navalcombat/internal/testutil"
)

// TestSeed fixes the fleets and CPU targeting of a TestApp
const TestSeed = 42

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	Memory    *memory.Storage
}

// NewTestApp creates an App with in-memory saves, a mocked clock and a fixed seed
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))

	app := newWithDependencies(store, mockClock, random.NewSeeded(TestSeed), Config{AutoSave: true}, testutil.NopLogger())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		Memory:    store,
	}
}
