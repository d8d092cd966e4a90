package suite_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/bellsim/internal/config"
	"github.com/san-kum/bellsim/internal/experiment"
	"github.com/san-kum/bellsim/internal/logging"
	"github.com/san-kum/bellsim/internal/suite"
)

var _ = Describe("Suite", func() {
	var registry *experiment.Registry

	BeforeEach(func() {
		registry = experiment.NewRegistry()
	})

	It("builds the reference sequence in order", func() {
		steps, err := suite.Reference(1000, 10, registry)
		Expect(err).NotTo(HaveOccurred())
		Expect(steps).To(HaveLen(4))

		Expect(steps[0].Protocol.Name()).To(Equal("spooky"))
		mixes := []float64{}
		for _, s := range steps[1:] {
			Expect(s.Protocol.Name()).To(Equal("hidden"))
			mixes = append(mixes, s.Protocol.(*experiment.Hidden).Mix)
		}
		Expect(mixes).To(Equal([]float64{0.5, 1.0, 0.0}))

		for i, s := range steps {
			Expect(s.Config.Seed).To(Equal(int64(10 + i)))
			Expect(s.Config.Trials).To(Equal(1000))
		}
	})

	It("runs every step and returns results in order", func() {
		steps, err := suite.Reference(20000, 1, registry)
		Expect(err).NotTo(HaveOccurred())

		results, err := suite.Run(context.Background(), steps, logging.Discard())
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(4))

		spooky, _ := results[0].Percent()
		for _, r := range results[1:] {
			hidden, ok := r.Percent()
			Expect(ok).To(BeTrue())
			Expect(hidden).To(BeNumerically(">", spooky))
		}
		last, _ := results[3].Percent()
		Expect(last).To(Equal(100.0))
	})

	It("reports no data for every step at zero trials", func() {
		steps, err := suite.Reference(0, 1, registry)
		Expect(err).NotTo(HaveOccurred())

		results, err := suite.Run(context.Background(), steps, logging.Discard())
		Expect(err).NotTo(HaveOccurred())
		for _, r := range results {
			Expect(r.NoData()).To(BeTrue())
		}
	})

	It("fails on unknown protocols", func() {
		cfg := config.DefaultConfig()
		cfg.Runs = []config.RunConfig{{Protocol: "telepathy"}}
		_, err := suite.Build(cfg, registry)
		Expect(err).To(MatchError(experiment.ErrUnknownProtocol))
	})

	It("stops at the first failing step", func() {
		steps, err := suite.Reference(100000, 1, registry)
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		results, err := suite.Run(ctx, steps, logging.Discard())
		Expect(err).To(MatchError(context.Canceled))
		Expect(results).To(BeEmpty())
	})
})
