// Package searcher runs Monte Carlo tree search over a shared, deduplicated
// search graph. Each search pass is one Rollout -> (Expansion) ->
// (Simulation) -> Backprop cycle; multiple workers run passes concurrently
// against the same graph.
package searcher

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"gopkg.in/yaml.v3"

	"github.com/dstu/thud-sub000/game"
	"github.com/dstu/thud-sub000/graph"
)

// Settings is the caller-supplied search budget and policy configuration.
type Settings struct {
	SimulationCount int           `yaml:"simulation_count"`
	ExploreBias     float64       `yaml:"explore_bias"`
	IterationCount  int           `yaml:"iteration_count"`
	Workers         int           `yaml:"workers"`
	Duration        time.Duration `yaml:"duration"`
}

// UnmarshalYAML accepts durations in time.ParseDuration notation ("20ms").
func (s *Settings) UnmarshalYAML(value *yaml.Node) error {
	type raw struct {
		SimulationCount int     `yaml:"simulation_count"`
		ExploreBias     float64 `yaml:"explore_bias"`
		IterationCount  int     `yaml:"iteration_count"`
		Workers         int     `yaml:"workers"`
		Duration        string  `yaml:"duration"`
	}
	var r raw
	if err := value.Decode(&r); err != nil {
		return err
	}
	*s = Settings{
		SimulationCount: r.SimulationCount,
		ExploreBias:     r.ExploreBias,
		IterationCount:  r.IterationCount,
		Workers:         r.Workers,
	}
	if r.Duration != "" {
		d, err := time.ParseDuration(r.Duration)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", r.Duration, err)
		}
		s.Duration = d
	}
	return nil
}

// ActionStats reports the accumulated outcome of one root action after a
// round.
type ActionStats[A comparable] struct {
	Action A
	Payoff game.Payoff
	UCB    UCBResult
}

// Option configures a Searcher.
type Option[S comparable, A comparable] func(*Searcher[S, A])

// WithExploreBias sets the exploration coefficient of the UCB1 policy.
func WithExploreBias[S comparable, A comparable](bias float64) Option[S, A] {
	return func(s *Searcher[S, A]) {
		if bias > 0 {
			s.exploreBias = bias
		}
	}
}

// WithSimulationCount sets the number of playouts run per expanded vertex.
func WithSimulationCount[S comparable, A comparable](count int) Option[S, A] {
	return func(s *Searcher[S, A]) {
		if count > 0 {
			s.simulationCount = count
		}
	}
}

// WithIterations bounds a round by pass count.
func WithIterations[S comparable, A comparable](iterations int) Option[S, A] {
	return func(s *Searcher[S, A]) {
		if iterations > 0 {
			s.iterations = iterations
		}
	}
}

// WithDuration bounds a round by wall-clock time instead of pass count.
func WithDuration[S comparable, A comparable](duration time.Duration) Option[S, A] {
	return func(s *Searcher[S, A]) {
		if duration > 0 {
			s.duration = duration
		}
	}
}

// WithWorkers sets the number of concurrent search workers, capped at
// graph.MaxWorkers by the width of the per-edge traversal masks.
func WithWorkers[S comparable, A comparable](workers int) Option[S, A] {
	return func(s *Searcher[S, A]) {
		if workers > 0 {
			s.workers = min(workers, graph.MaxWorkers)
		}
	}
}

// WithSeed fixes the base seed for the per-worker random number generators.
func WithSeed[S comparable, A comparable](seed uint64) Option[S, A] {
	return func(s *Searcher[S, A]) {
		s.seed = seed
	}
}

// WithSimulator replaces the default uniformly random playout policy.
func WithSimulator[S comparable, A comparable](sim Simulator[S, A]) Option[S, A] {
	return func(s *Searcher[S, A]) {
		if sim != nil {
			s.simulator = sim
		}
	}
}

// WithMetrics enables per-round metric collection.
func WithMetrics[S comparable, A comparable]() Option[S, A] {
	return func(s *Searcher[S, A]) {
		s.metrics = NewCollector()
	}
}

// WithSettings applies a Settings record wholesale.
func WithSettings[S comparable, A comparable](st Settings) Option[S, A] {
	return func(s *Searcher[S, A]) {
		WithSimulationCount[S, A](st.SimulationCount)(s)
		WithExploreBias[S, A](st.ExploreBias)(s)
		WithIterations[S, A](st.IterationCount)(s)
		WithWorkers[S, A](st.Workers)(s)
		WithDuration[S, A](st.Duration)(s)
	}
}

// Searcher drives search rounds for one Rules implementation. A Searcher is
// stateless between rounds apart from its metrics collector; the graph holds
// everything learned.
type Searcher[S comparable, A comparable] struct {
	rules           game.Rules[S, A]
	exploreBias     float64
	simulationCount int
	iterations      int
	duration        time.Duration
	workers         int
	seed            uint64
	simulator       Simulator[S, A]
	metrics         Collector
}

// New builds a Searcher. Rounds must be bounded by iterations or duration.
func New[S comparable, A comparable](rules game.Rules[S, A], options ...Option[S, A]) *Searcher[S, A] {
	s := &Searcher[S, A]{ // Default values
		rules:           rules,
		exploreBias:     1.0,
		simulationCount: 1,
		workers:         1,
		seed:            uint64(time.Now().UnixNano()),
		metrics:         NewDummyCollector(),
	}
	s.simulator = randomSimulator[S, A]{rules: rules}
	for _, option := range options {
		option(s)
	}
	if s.iterations <= 0 && s.duration <= 0 {
		panic("Must specify search iterations or duration")
	}
	return s
}

// Initialize ensures the graph has an expanded vertex for rootState and
// returns it. Callers must initialize a state before running rounds on it.
func (s *Searcher[S, A]) Initialize(g *graph.Graph[S, A], rootState S) graph.Vertex[S, A] {
	v := g.FindOrCreateRoot(rootState)
	if payoff, over := s.rules.Payoff(rootState); over {
		v.SetProven(payoff)
		v.MarkExpanded()
		return v
	}
	if !v.MarkExpanded() {
		s.appendChildren(g, v, rootState)
	}
	return v
}

// RunRound runs the configured budget of search passes against g, anchored at
// rootState, and reports the accumulated statistics of each root action.
// Passes that detect an in-pass cycle are discarded without failing the
// round; selector and payoff-consistency failures abort the round, leaving
// the graph valid and resumable.
func (s *Searcher[S, A]) RunRound(g *graph.Graph[S, A], rootState S) ([]ActionStats[A], error) {
	root, ok := g.FindVertex(rootState)
	if !ok {
		return nil, ErrNoRootState
	}
	s.metrics.Start()

	var err error
	if s.iterations > 0 {
		err = s.iterate(g, root)
	} else {
		err = s.countdown(g, root)
	}
	if err != nil {
		return nil, err
	}

	children := root.Children()
	player := s.rules.ActivePlayer(rootState)
	logParent := logVisits(root.Stats().Visits())
	stats := make([]ActionStats[A], len(children))
	for i, e := range children {
		stats[i] = ActionStats[A]{
			Action: e.Action(),
			Payoff: e.Stats().Snapshot(),
			UCB:    childUCB(e, player, logParent, s.exploreBias),
		}
	}

	metric := s.metrics.Complete()
	log.Debug().
		Int64("passes", metric.Passes).
		Int64("discarded_cycles", metric.DiscardedCycles).
		Int64("expansions", metric.Expansions).
		Int64("transposition_hits", metric.TranspositionHits).
		Msg("search round complete")
	return stats, nil
}

// RoundMetrics returns the collector's view of the last round.
func (s *Searcher[S, A]) RoundMetrics() RoundMetric {
	return s.metrics.Complete()
}

// CommitAction advances the logical root by the chosen action and prunes
// everything unreachable from the new root. Returns the new root state.
func (s *Searcher[S, A]) CommitAction(g *graph.Graph[S, A], rootState S, action A) (S, error) {
	if _, ok := g.FindVertex(rootState); !ok {
		return rootState, ErrNoRootState
	}
	next := s.rules.Apply(rootState, action)
	v := s.Initialize(g, next)
	before := g.NumVertices()
	g.Prune(v)
	log.Info().
		Int("vertices_before", before).
		Int("vertices_after", g.NumVertices()).
		Msg("advanced root and pruned graph")
	return next, nil
}

// iterate distributes a fixed pass budget over the worker pool.
func (s *Searcher[S, A]) iterate(g *graph.Graph[S, A], root graph.Vertex[S, A]) error {
	tasks := make(chan struct{}, s.iterations)
	for i := 0; i < s.iterations; i++ {
		tasks <- struct{}{}
	}
	close(tasks)

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
		stop     atomic.Bool
	)
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(s.seed + uint64(worker)))
			for range tasks {
				if stop.Load() {
					return
				}
				if err := s.step(g, root, worker, rng); err != nil {
					once.Do(func() {
						firstErr = err
						stop.Store(true)
					})
					return
				}
			}
		}(w)
	}
	wg.Wait()
	return firstErr
}

// countdown runs passes until the round duration elapses.
func (s *Searcher[S, A]) countdown(g *graph.Graph[S, A], root graph.Vertex[S, A]) error {
	start := time.Now()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
		stop     atomic.Bool
	)
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(s.seed + uint64(worker)))
			for time.Since(start) < s.duration && !stop.Load() {
				if err := s.step(g, root, worker, rng); err != nil {
					once.Do(func() {
						firstErr = err
						stop.Store(true)
					})
					return
				}
			}
		}(w)
	}
	wg.Wait()
	return firstErr
}

// step runs one full search pass: descend, expand if an unexpanded edge was
// reached, simulate if the new vertex has no known payoff, and backprop.
// Cyclic passes are discarded here; they are not errors for the round.
func (s *Searcher[S, A]) step(g *graph.Graph[S, A], root graph.Vertex[S, A], worker int, rng *rand.Rand) error {
	s.metrics.AddPass()
	res, err := s.rollout(root, worker, rng)
	defer func() {
		// Release this pass's descent marks so the next pass by this
		// worker starts clean.
		for _, e := range res.path {
			e.ClearRollout(worker)
		}
	}()
	if err != nil {
		var cycle *CycleError
		if errors.As(err, &cycle) {
			s.metrics.AddDiscardedCycle()
			return nil
		}
		if errors.Is(err, errPendingExpansion) {
			return nil
		}
		return err
	}

	if res.terminal {
		if _, ok := res.vertex.Proven(); !ok {
			res.vertex.SetProven(res.payoff)
		}
		s.backprop(res.vertex, res.payoff, worker)
		s.backpropProven(res.vertex)
		return nil
	}

	exp, err := s.expandEdge(g, res.edge, worker, rng)
	if err != nil {
		return err
	}
	s.backprop(exp.start, exp.payoff, worker)
	res.edge.ClearBackprop(worker)
	if exp.proven {
		s.backpropProven(exp.start)
	}
	return nil
}
