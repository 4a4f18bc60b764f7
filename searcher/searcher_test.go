package searcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dstu/thud-sub000/game"
	"github.com/dstu/thud-sub000/graph"
)

// mockRules is a table-driven game for tests: states are strings, and each
// action is named after the state it leads to. States absent from active
// default to game.PlayerOne.
type mockRules struct {
	active  map[string]game.Player
	actions map[string][]string
	payoffs map[string]game.Payoff
}

func (m mockRules) ActivePlayer(s string) game.Player { return m.active[s] }

func (m mockRules) ForEachAction(s string, fn func(string) bool) {
	for _, a := range m.actions[s] {
		if !fn(a) {
			return
		}
	}
}

func (m mockRules) Apply(s, a string) string { return a }

func (m mockRules) Payoff(s string) (game.Payoff, bool) {
	p, ok := m.payoffs[s]
	return p, ok
}

var (
	winOne  = game.Payoff{Weight: 1, Scores: [2]uint32{1, 0}}
	winTwo  = game.Payoff{Weight: 1, Scores: [2]uint32{0, 1}}
	scoredP = game.Payoff{Weight: 1, Scores: [2]uint32{2, 1}}
)

func actionStats[A comparable](t *testing.T, stats []ActionStats[A], action A) ActionStats[A] {
	t.Helper()
	for _, st := range stats {
		if st.Action == action {
			return st
		}
	}
	t.Fatalf("no stats reported for action %v", action)
	return ActionStats[A]{}
}

func TestNew(t *testing.T) {
	t.Run("panics without an iteration or duration budget", func(t *testing.T) {
		require.Panics(t, func() {
			New[string, string](mockRules{})
		}, "A searcher with no budget can never stop")
	})

	t.Run("caps workers at the traversal mask width", func(t *testing.T) {
		s := New[string, string](mockRules{},
			WithIterations[string, string](1),
			WithWorkers[string, string](1000))

		require.Equal(t, graph.MaxWorkers, s.workers,
			"Worker count should be bounded by the per-edge bitmask width")
	})
}

func TestRunRound(t *testing.T) {
	t.Run("requires an initialized root", func(t *testing.T) {
		s := New[string, string](mockRules{}, WithIterations[string, string](10))
		g := graph.New[string, string]()

		_, err := s.RunRound(g, "root")

		require.ErrorIs(t, err, ErrNoRootState, "Searching an unknown root should fail recoverably")
	})

	t.Run("prefers the immediately winning action", func(t *testing.T) {
		// One ply, two actions: win for the active player or loss.
		rules := mockRules{
			active:  map[string]game.Player{"root": game.PlayerOne},
			actions: map[string][]string{"root": {"win", "loss"}},
			payoffs: map[string]game.Payoff{"win": winOne, "loss": winTwo},
		}
		s := New[string, string](rules,
			WithIterations[string, string](100),
			WithExploreBias[string, string](1.0),
			WithSeed[string, string](42))
		g := graph.New[string, string]()
		s.Initialize(g, "root")

		stats, err := s.RunRound(g, "root")

		require.NoError(t, err)
		require.Len(t, stats, 2)
		win := actionStats(t, stats, "win")
		loss := actionStats(t, stats, "loss")
		require.Greater(t, win.Payoff.Weight, loss.Payoff.Weight,
			"The winning action should be the most visited after enough passes")
	})

	t.Run("forced line accumulates exactly N times the payoff", func(t *testing.T) {
		// Three plies with exactly one legal action each, ending in a
		// fixed payoff.
		rules := mockRules{
			actions: map[string][]string{
				"root": {"s1"},
				"s1":   {"s2"},
				"s2":   {"end"},
			},
			payoffs: map[string]game.Payoff{"end": scoredP},
		}
		const n = 10
		s := New[string, string](rules,
			WithIterations[string, string](n),
			WithSeed[string, string](7))
		g := graph.New[string, string]()
		s.Initialize(g, "root")

		stats, err := s.RunRound(g, "root")

		require.NoError(t, err)
		require.Len(t, stats, 1, "The root has a single child")
		got := stats[0].Payoff
		require.Equal(t, uint32(n), got.Weight,
			"The root's only child should be visited once per pass")
		require.Equal(t, uint32(n*scoredP.Scores[0]), got.Scores[0],
			"Accumulated player one score should be exactly N times the payoff")
		require.Equal(t, uint32(n*scoredP.Scores[1]), got.Scores[1],
			"Accumulated player two score should be exactly N times the payoff")
	})

	t.Run("transposing lines share one vertex with two parents", func(t *testing.T) {
		// Two distinct 2-ply sequences reach the same state x.
		rules := mockRules{
			actions: map[string][]string{
				"root": {"m1", "m2"},
				"m1":   {"x"},
				"m2":   {"x"},
				"x":    {"end"},
			},
			payoffs: map[string]game.Payoff{"end": winOne},
		}
		s := New[string, string](rules,
			WithIterations[string, string](50),
			WithSeed[string, string](11))
		g := graph.New[string, string]()
		s.Initialize(g, "root")

		_, err := s.RunRound(g, "root")

		require.NoError(t, err)
		x, ok := g.FindVertex("x")
		require.True(t, ok, "The shared state should have been expanded")
		require.Len(t, x.Parents(), 2,
			"Both transposing sequences should back-link to the shared vertex")
		require.Equal(t, 5, g.NumVertices(),
			"root, m1, m2, x and end, with no duplicates")
	})

	t.Run("concurrent workers never trip on each other's marks", func(t *testing.T) {
		// A single forced line maximizes edge sharing between workers;
		// any cross-worker interference would surface as a discarded
		// cycle on an acyclic graph.
		rules := mockRules{
			actions: map[string][]string{
				"root": {"s1"},
				"s1":   {"s2"},
				"s2":   {"s3"},
				"s3":   {"end"},
			},
			payoffs: map[string]game.Payoff{"end": winOne},
		}
		s := New[string, string](rules,
			WithIterations[string, string](500),
			WithWorkers[string, string](8),
			WithSeed[string, string](3),
			WithMetrics[string, string]())
		g := graph.New[string, string]()
		s.Initialize(g, "root")

		_, err := s.RunRound(g, "root")

		require.NoError(t, err)
		metric := s.RoundMetrics()
		require.Zero(t, metric.DiscardedCycles,
			"An acyclic game must never produce a cycle error, however many workers run")
		require.Equal(t, int64(500), metric.Passes, "Every pass should be accounted for")
	})

	t.Run("duration budget terminates and records passes", func(t *testing.T) {
		rules := mockRules{
			active:  map[string]game.Player{"root": game.PlayerOne},
			actions: map[string][]string{"root": {"win", "loss"}},
			payoffs: map[string]game.Payoff{"win": winOne, "loss": winTwo},
		}
		s := New[string, string](rules,
			WithDuration[string, string](20*time.Millisecond),
			WithWorkers[string, string](2),
			WithSeed[string, string](9),
			WithMetrics[string, string]())
		g := graph.New[string, string]()
		s.Initialize(g, "root")

		stats, err := s.RunRound(g, "root")

		require.NoError(t, err)
		require.Len(t, stats, 2)
		metric := s.RoundMetrics()
		require.Positive(t, metric.Passes,
			"A time-bounded round should complete at least one pass")
		require.GreaterOrEqual(t, metric.Duration, 20*time.Millisecond,
			"Workers run until the round duration elapses")
		total := uint32(0)
		for _, st := range stats {
			total += st.Payoff.Weight
		}
		require.Positive(t, total, "Root edges should accumulate visits under a time budget")
	})

	t.Run("cyclic games classify the back edge and keep searching", func(t *testing.T) {
		// a -> b -> a loops; b can also end the game.
		rules := mockRules{
			actions: map[string][]string{
				"a": {"b"},
				"b": {"a", "end"},
			},
			payoffs: map[string]game.Payoff{"end": winTwo},
		}
		s := New[string, string](rules,
			WithIterations[string, string](100),
			WithSeed[string, string](5),
			WithMetrics[string, string]())
		g := graph.New[string, string]()
		s.Initialize(g, "a")

		_, err := s.RunRound(g, "a")

		require.NoError(t, err, "Cycle passes are discarded, not surfaced")
		b, ok := g.FindVertex("b")
		require.True(t, ok)
		for _, e := range b.Children() {
			if e.Action() == "a" {
				require.Equal(t, graph.TargetCycle, e.Target().Kind,
					"The edge back to a should be classified as a cycle")
			}
		}
	})

	t.Run("a dead end without a payoff is a rules defect", func(t *testing.T) {
		rules := mockRules{
			actions: map[string][]string{"root": {"stuck"}},
		}
		s := New[string, string](rules,
			WithIterations[string, string](10),
			WithSeed[string, string](1))
		g := graph.New[string, string]()
		s.Initialize(g, "root")

		_, err := s.RunRound(g, "root")

		require.ErrorIs(t, err, ErrNoTerminalPayoff,
			"A state with no actions and no payoff should abort the round")
	})
}

func TestInitialize(t *testing.T) {
	t.Run("enumerates root children exactly once", func(t *testing.T) {
		rules := mockRules{
			actions: map[string][]string{"root": {"a", "b"}},
			payoffs: map[string]game.Payoff{"a": winOne, "b": winTwo},
		}
		s := New[string, string](rules, WithIterations[string, string](1))
		g := graph.New[string, string]()

		v := s.Initialize(g, "root")
		again := s.Initialize(g, "root")

		require.Equal(t, v.ID(), again.ID())
		require.Equal(t, 2, v.ChildCount(), "Re-initializing should not duplicate children")
	})

	t.Run("terminal root is proven immediately", func(t *testing.T) {
		rules := mockRules{payoffs: map[string]game.Payoff{"over": winOne}}
		s := New[string, string](rules, WithIterations[string, string](1))
		g := graph.New[string, string]()

		v := s.Initialize(g, "over")

		payoff, ok := v.Proven()
		require.True(t, ok, "A terminal root should carry its payoff")
		require.Equal(t, winOne, payoff)
	})
}

func TestCommitAction(t *testing.T) {
	rules := mockRules{
		actions: map[string][]string{
			"root": {"a", "b"},
			"a":    {"end"},
			"b":    {"end"},
		},
		payoffs: map[string]game.Payoff{"end": winOne},
	}

	t.Run("advances the root and prunes the rest", func(t *testing.T) {
		s := New[string, string](rules,
			WithIterations[string, string](30),
			WithSeed[string, string](2))
		g := graph.New[string, string]()
		s.Initialize(g, "root")
		_, err := s.RunRound(g, "root")
		require.NoError(t, err)

		next, err := s.CommitAction(g, "root", "a")

		require.NoError(t, err)
		require.Equal(t, "a", next)
		_, ok := g.FindVertex("root")
		require.False(t, ok, "The abandoned root should be pruned away")
		_, ok = g.FindVertex("a")
		require.True(t, ok, "The committed state should remain")
	})

	t.Run("rejects an unknown root", func(t *testing.T) {
		s := New[string, string](rules, WithIterations[string, string](1))
		g := graph.New[string, string]()

		_, err := s.CommitAction(g, "root", "a")

		require.ErrorIs(t, err, ErrNoRootState)
	})
}
