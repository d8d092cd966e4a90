package experiment_test

import (
	"bytes"
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/bellsim/internal/bell"
	"github.com/san-kum/bellsim/internal/experiment"
	"github.com/san-kum/bellsim/internal/logging"
	"github.com/san-kum/bellsim/internal/metrics"
)

// broken feeds every trial a draw outside [0, 1).
type broken struct{}

func (broken) Name() string { return "broken" }

func (broken) Trial(bell.RandomSource) bell.Outcome {
	return bell.NewPair().Spooky(bell.NewSequence(1.0))
}

func (broken) Expected() float64 { return 0.5 }

// tolerance is five binomial standard errors, in percentage points.
func tolerance(p float64, n int) float64 {
	return 5 * 100 * math.Sqrt(p*(1-p)/float64(n))
}

var _ = Describe("Experiment", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("Count", func() {
		It("counts every spooky trial forced onto matching detectors", func() {
			src := bell.NewSequence(0.1)
			Expect(experiment.Count(src, 100, experiment.NewSpooky())).To(Equal(100))
		})

		It("returns zero for non-positive trial counts", func() {
			src := bell.NewSource(1)
			Expect(experiment.Count(src, 0, experiment.NewSpooky())).To(BeZero())
			Expect(experiment.Count(src, -5, experiment.NewSpooky())).To(BeZero())
		})
	})

	Describe("Run", func() {
		It("reports no data for zero trials", func() {
			exp := experiment.New(experiment.Config{Trials: 0, Seed: 1}, experiment.NewSpooky())
			result, err := exp.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.NoData()).To(BeTrue())

			pct, ok := result.Percent()
			Expect(ok).To(BeFalse())
			Expect(pct).To(BeZero())
		})

		It("treats negative trial counts as no data", func() {
			exp := experiment.New(experiment.Config{Trials: -10, Seed: 1}, experiment.NewSpooky())
			result, err := exp.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.NoData()).To(BeTrue())
			Expect(result.Trials).To(BeZero())
		})

		It("converges to 50% for spooky", func() {
			const n = 200000
			exp := experiment.New(experiment.Config{Trials: n, Seed: 42}, experiment.NewSpooky())
			result, err := exp.Run(ctx)
			Expect(err).NotTo(HaveOccurred())

			pct, ok := result.Percent()
			Expect(ok).To(BeTrue())
			Expect(pct).To(BeNumerically("~", 50, tolerance(0.5, n)))
			Expect(result.Expected).To(BeNumerically("~", 50, 1e-9))
			Expect(result.Bound).To(BeZero())
			Expect(result.ID).NotTo(BeEmpty())
		})

		DescribeTable("hidden variable runs stay above the spooky rate",
			func(mix float64) {
				const n = 200000
				hidden, err := experiment.NewHidden(mix)
				Expect(err).NotTo(HaveOccurred())

				result, err := experiment.New(experiment.Config{Trials: n, Seed: 7}, hidden).Run(ctx)
				Expect(err).NotTo(HaveOccurred())

				want := bell.HiddenDifference(mix)
				pct, _ := result.Percent()
				Expect(pct).To(BeNumerically("~", 100*want, tolerance(want, n)+1e-9))
				Expect(pct).To(BeNumerically(">=", 100*bell.BellBound-tolerance(bell.BellBound, n)))
				Expect(pct).To(BeNumerically(">", 52))
				Expect(result.Bound).To(BeNumerically("~", 100*5.0/9.0, 1e-9))
				Expect(result.Params).To(HaveKeyWithValue("mix", mix))
			},
			Entry("even mix", 0.5),
			Entry("oddball only", 1.0),
			Entry("trivial only", 0.0),
		)

		It("is reproducible for a fixed seed", func() {
			cfg := experiment.Config{Trials: 10000, Seed: 99}
			a, err := experiment.New(cfg, experiment.NewSpooky()).Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			b, err := experiment.New(cfg, experiment.NewSpooky()).Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(a.Different).To(Equal(b.Different))
			Expect(a.ID).NotTo(Equal(b.ID))
		})

		It("fills metrics on the sequential path", func() {
			exp := experiment.New(experiment.Config{Trials: 5000, Seed: 3}, experiment.NewSpooky())
			for _, m := range experiment.NewRegistry().DefaultMetrics() {
				exp.AddMetric(m)
			}
			conv := metrics.NewConvergence(1000)
			exp.AddMetric(conv)

			result, err := exp.Run(ctx)
			Expect(err).NotTo(HaveOccurred())

			pct, _ := result.Percent()
			Expect(result.Metrics).To(HaveKey("difference_rate"))
			Expect(result.Metrics["difference_rate"]).To(BeNumerically("~", pct, 1e-9))
			Expect(result.Metrics["lhs_up"]).To(BeNumerically("~", 100, 1e-9))
			Expect(result.Metrics["std_error"]).To(BeNumerically(">", 0))
			Expect(conv.History()).To(HaveLen(5))
		})

		It("rejects metrics with several workers", func() {
			exp := experiment.New(experiment.Config{Trials: 10, Workers: 2}, experiment.NewSpooky())
			exp.AddMetric(metrics.NewDifferenceRate())
			_, err := exp.Run(ctx)
			Expect(err).To(MatchError(experiment.ErrInvalidConfig))
		})

		It("stops when the context is canceled", func() {
			canceled, cancel := context.WithCancel(ctx)
			cancel()
			_, err := experiment.New(experiment.Config{Trials: 100000, Seed: 1}, experiment.NewSpooky()).Run(canceled)
			Expect(err).To(MatchError(context.Canceled))
		})
	})

	Describe("parallel runs", func() {
		It("converges and is reproducible per seed and worker count", func() {
			const n = 200000
			cfg := experiment.Config{Trials: n, Seed: 5, Workers: 4}

			a, err := experiment.New(cfg, experiment.NewSpooky()).Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			b, err := experiment.New(cfg, experiment.NewSpooky()).Run(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(a.Different).To(Equal(b.Different))
			pct, _ := a.Percent()
			Expect(pct).To(BeNumerically("~", 50, tolerance(0.5, n)))
		})

		It("handles more workers than trials", func() {
			exp := experiment.New(experiment.Config{Trials: 3, Seed: 1, Workers: 8}, experiment.NewSpooky())
			result, err := exp.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Trials).To(Equal(3))
			Expect(result.Different).To(BeNumerically("<=", 3))
		})
	})

	Describe("logging", func() {
		It("logs chunk progress at trace level", func() {
			var buf bytes.Buffer
			e := experiment.New(experiment.Config{Trials: 10000, Seed: 1, Workers: 1}, experiment.NewSpooky())
			e.SetLogger(logging.NewLogger("trace", &buf))
			_, err := e.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(buf.String()).To(ContainSubstring("level=TRACE"))
			Expect(buf.String()).To(ContainSubstring("experiment.chunk"))
		})

		It("stays quiet above trace level", func() {
			var buf bytes.Buffer
			e := experiment.New(experiment.Config{Trials: 10000, Seed: 1, Workers: 2}, experiment.NewSpooky())
			e.SetLogger(logging.NewLogger("debug", &buf))
			_, err := e.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(buf.String()).To(BeEmpty())
		})
	})

	Describe("invariant violations", func() {
		It("propagate from the sequential path", func() {
			e := experiment.New(experiment.Config{Trials: 10, Seed: 1, Workers: 1}, broken{})
			Expect(func() { e.Run(ctx) }).To(PanicWith(BeAssignableToTypeOf(&bell.InvariantError{})))
		})

		It("are re-raised on the caller from a parallel worker", func() {
			e := experiment.New(experiment.Config{Trials: 10000, Seed: 1, Workers: 4}, broken{})
			Expect(func() { e.Run(ctx) }).To(PanicWith(BeAssignableToTypeOf(&bell.InvariantError{})))
		})
	})

	Describe("Hidden trial", func() {
		It("uses Trivial when the plan draw equals the mix", func() {
			src := bell.NewSequence(0.5, 0.5, 0.5)
			out := (&experiment.Hidden{Mix: 0.5}).Trial(src)
			Expect(out).To(Equal(bell.Outcome{LHS: bell.Down, RHS: bell.Up}))
			Expect(src.Draws()).To(Equal(3))
		})

		It("uses OddBall when the plan draw is below the mix", func() {
			out := (&experiment.Hidden{Mix: 0.5}).Trial(bell.NewSequence(0.4, 0.5, 0.5))
			Expect(out).To(Equal(bell.Outcome{LHS: bell.Up, RHS: bell.Down}))
		})

		It("panics on a plan draw of exactly 1.0", func() {
			trial := func() { (&experiment.Hidden{Mix: 0.5}).Trial(bell.NewSequence(1.0, 0.1, 0.1)) }
			Expect(trial).To(PanicWith(BeAssignableToTypeOf(&bell.InvariantError{})))
		})
	})

	Describe("Registry", func() {
		var r *experiment.Registry

		BeforeEach(func() {
			r = experiment.NewRegistry()
		})

		It("lists protocols", func() {
			Expect(r.ListProtocols()).To(Equal([]string{"hidden", "spooky"}))
		})

		It("builds hidden with a default mix", func() {
			p, err := r.GetProtocol("hidden", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.(*experiment.Hidden).Mix).To(Equal(0.5))
		})

		It("rejects unknown protocols", func() {
			_, err := r.GetProtocol("telepathy", nil)
			Expect(err).To(MatchError(experiment.ErrUnknownProtocol))
		})

		It("rejects mixes outside [0, 1]", func() {
			_, err := r.GetProtocol("hidden", map[string]float64{"mix": 1.5})
			Expect(err).To(MatchError(experiment.ErrInvalidConfig))
		})
	})
})
