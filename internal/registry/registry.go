// Package registry maps game ids to factories. Game packages register
// themselves in init(); the front-ends only ever talk to these interfaces.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/tui-netris/internal/core"
	"github.com/vovakirdan/tui-netris/internal/multiplayer"
)

// Game is a locally stepped game. It holds no terminal or transport state:
// the platform maps keys to actions, paces ticks and presents the screen.
type Game interface {
	// ID is the stable identifier used by the CLI and the score table.
	ID() string
	Title() string

	// Reset starts a new round. It is called before the first Step and
	// again on restart.
	Reset(cfg core.RuntimeConfig)

	// Step advances the simulation by one tick.
	Step(in core.InputFrame) core.StepResult

	// Render draws the game into dst, which is cleared beforehand.
	Render(dst *core.Screen)

	State() core.GameState
}

// OnlineGame is a game served by the match loop. The server steps it
// through StepMulti; each client keeps its own instance in sync with
// ApplySnapshot and renders it.
type OnlineGame interface {
	multiplayer.OnlineGame
	ID() string
	Title() string
	ApplySnapshot(snap multiplayer.GameSnapshot)
	Render(dst *core.Screen)
}

// Kind tells the menu how a game is started.
type Kind int

const (
	KindLocal Kind = iota
	KindOnline
)

// GameInfo describes a registered game.
type GameInfo struct {
	ID    string
	Title string
	Kind  Kind
}

// Factory creates a local game.
type Factory func() Game

// OnlineFactory creates an online game.
type OnlineFactory func() OnlineGame

var (
	mu       sync.RWMutex
	local    = make(map[string]Factory)
	online   = make(map[string]OnlineFactory)
	infoByID = make(map[string]GameInfo)
)

// Register adds a local game. It panics when the id is taken.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	claim(id)
	local[id] = f
	infoByID[id] = GameInfo{ID: id, Title: f().Title(), Kind: KindLocal}
}

// RegisterOnline adds an online game. It panics when the id is taken.
func RegisterOnline(id string, f OnlineFactory) {
	mu.Lock()
	defer mu.Unlock()

	claim(id)
	online[id] = f
	infoByID[id] = GameInfo{ID: id, Title: f().Title(), Kind: KindOnline}
}

// claim must be called with the lock held.
func claim(id string) {
	if _, exists := infoByID[id]; exists {
		panic(fmt.Sprintf("registry: game %q already registered", id))
	}
}

// List returns every registered game sorted by id.
func List() []GameInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]GameInfo, 0, len(infoByID))
	for _, info := range infoByID {
		result = append(result, info)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

// Create instantiates a local game.
func Create(id string) (Game, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := local[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown game %q", id)
	}
	return f(), nil
}

// CreateOnline instantiates an online game.
func CreateOnline(id string) (OnlineGame, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := online[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown online game %q", id)
	}
	return f(), nil
}

// Exists reports whether id names a game of either kind.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := infoByID[id]
	return ok
}

// Lookup returns the description of a registered game.
func Lookup(id string) (GameInfo, bool) {
	mu.RLock()
	defer mu.RUnlock()

	info, ok := infoByID[id]
	return info, ok
}

// MatchFactory adapts CreateOnline to the coordinator's factory type.
// The coordinator resets the game with cfg before the first tick.
func MatchFactory(gameID string, _ core.RuntimeConfig) (multiplayer.OnlineGame, error) {
	g, err := CreateOnline(gameID)
	if err != nil {
		return nil, err
	}
	return g, nil
}
