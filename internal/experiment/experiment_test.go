package experiment

import (
	"bytes"
	"context"
	"errors"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/sdesim/internal/config"
	"github.com/san-kum/sdesim/internal/dynamo"
	"github.com/san-kum/sdesim/internal/ensemble"
	"github.com/san-kum/sdesim/internal/metrics"
)

var _ = Describe("Registry", func() {
	var reg *Registry

	BeforeEach(func() {
		reg = NewRegistry()
	})

	It("lists every model in order", func() {
		Expect(reg.ListModels()).To(Equal([]string{
			"bouncing_oscillator",
			"double_well",
			"duffing",
			"geometric_jump_diffusion",
			"normal_jump_diffusion",
			"ornstein_uhlenbeck",
		}))
	})

	It("rejects unknown models", func() {
		_, err := reg.GetModel("pendulum")
		Expect(err).To(MatchError(ContainSubstring("unknown model")))
	})

	It("derives a default config from the model", func() {
		cfg, err := reg.DefaultConfig("geometric_jump_diffusion")
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Model).To(Equal("geometric_jump_diffusion"))
		Expect(cfg.InitState).To(Equal([]float64{1}))
		Expect(cfg.Dt).To(Equal(0.01))
	})

	It("adds energy metrics only for Hamiltonian models", func() {
		osc, _ := reg.GetModel("bouncing_oscillator")
		gjd, _ := reg.GetModel("geometric_jump_diffusion")
		Expect(reg.DefaultMetrics(osc)).To(HaveLen(5))
		Expect(reg.DefaultMetrics(gjd)).To(HaveLen(2))
	})
})

var _ = Describe("Experiment", func() {
	var (
		reg    *Registry
		logBuf *bytes.Buffer
		logger *slog.Logger
	)

	BeforeEach(func() {
		reg = NewRegistry()
		logBuf = &bytes.Buffer{}
		logger = slog.New(slog.NewTextHandler(logBuf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	})

	Context("with the bouncing oscillator", func() {
		var exp *Experiment

		BeforeEach(func() {
			cfg, err := reg.DefaultConfig("bouncing_oscillator")
			Expect(err).NotTo(HaveOccurred())
			cfg.Seed = 1
			exp = New(cfg, reg, logger)
			Expect(exp.Setup()).To(Succeed())
		})

		It("records the full trajectory", func() {
			res, err := exp.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Trajectory.Len()).To(Equal(1001))
			Expect(res.Trajectory.States[0]).To(Equal(dynamo.State{1, 0}))
			Expect(res.Metrics).To(HaveKey("jump_rate"))
			Expect(res.Metrics).To(HaveKey("energy_drift"))
			Expect(res.Metrics["jump_energy_loss"]).To(BeNumerically("~", 0, 1e-9))
			Expect(res.Metrics["jump_rate"]).To(BeNumerically(">", 0))
			Expect(logBuf.String()).To(ContainSubstring("run finished"))
		})

		It("is reproducible for a fixed seed", func() {
			a, err := exp.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			b, err := exp.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(a.Trajectory.States).To(Equal(b.Trajectory.States))
		})

		It("refuses to run with a canceled context", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := exp.Run(ctx)
			Expect(err).To(MatchError(context.Canceled))
		})
	})

	It("applies parameter overrides", func() {
		cfg, _ := reg.DefaultConfig("bouncing_oscillator")
		cfg.SetParam("restitution", 0.5)
		exp := New(cfg, reg, logger)
		Expect(exp.Setup()).To(Succeed())
		Expect(exp.Model().GetParams()["restitution"]).To(Equal(0.5))

		res, err := exp.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		for _, i := range res.Trajectory.Jumps {
			prev, cur := res.Trajectory.States[i-1], res.Trajectory.States[i]
			Expect(cur[1]).To(Equal(-0.5 * prev[1]))
		}
	})

	It("does not modify the caller's config", func() {
		cfg, _ := reg.DefaultConfig("ornstein_uhlenbeck")
		exp := New(cfg, reg, logger)
		exp.Config().SetParam("theta", 3)
		Expect(cfg.Params).NotTo(HaveKey("theta"))
	})

	DescribeTable("rejects invalid configurations before running",
		func(mutate func(*config.Config), want error) {
			cfg, _ := reg.DefaultConfig("geometric_jump_diffusion")
			mutate(cfg)
			err := New(cfg, reg, logger).Setup()
			Expect(err).To(HaveOccurred())
			if want != nil {
				Expect(err).To(MatchError(want))
			}
		},
		Entry("zero dt", func(c *config.Config) { c.Dt = 0 }, dynamo.ErrInvalidParameter),
		Entry("t1 before t0", func(c *config.Config) { c.T0, c.T1 = 5, 1 }, dynamo.ErrInvalidParameter),
		Entry("negative sigma", func(c *config.Config) { c.Sigma = -1 }, dynamo.ErrInvalidParameter),
		Entry("negative lambda", func(c *config.Config) { c.SetParam("lambda", -1) }, dynamo.ErrInvalidParameter),
		Entry("unknown parameter", func(c *config.Config) { c.SetParam("omega", 2) }, nil),
		Entry("unknown model", func(c *config.Config) { c.Model = "nope" }, nil),
	)

	It("warns when lambda*dt is large", func() {
		cfg, _ := reg.DefaultConfig("normal_jump_diffusion")
		cfg.SetParam("lambda", 50)
		Expect(New(cfg, reg, logger).Setup()).To(Succeed())
		Expect(logBuf.String()).To(ContainSubstring("jump probability per step is large"))
	})

	It("fails Build before Setup", func() {
		cfg, _ := reg.DefaultConfig("ornstein_uhlenbeck")
		_, err := New(cfg, reg, logger).Build(0)
		Expect(err).To(MatchError("experiment not setup"))
	})

	DescribeTable("rejects an initial state of the wrong dimension",
		func(model string, initState []float64, want int) {
			cfg, _ := reg.DefaultConfig(model)
			cfg.InitState = initState

			err := New(cfg, reg, logger).Setup()
			Expect(err).To(MatchError(dynamo.ErrShape))
			var shapeErr *dynamo.ShapeError
			Expect(errors.As(err, &shapeErr)).To(BeTrue())
			Expect(shapeErr.Source).To(Equal("init_state"))
			Expect(shapeErr.Want).To(Equal(want))
			Expect(shapeErr.Got).To(Equal(len(initState)))
		},
		Entry("too short for the oscillator", "bouncing_oscillator", []float64{1}, 2),
		Entry("too long for ornstein-uhlenbeck", "ornstein_uhlenbeck", []float64{1, 2}, 1),
		Entry("too short for duffing", "duffing", []float64{1, 0}, 3),
	)

	Context("ensembles", func() {
		It("runs independent seeded copies", func() {
			cfg, _ := reg.DefaultConfig("ornstein_uhlenbeck")
			cfg.T1 = 1
			cfg.Seed = 10
			cfg.Ensemble.Runs = 50
			cfg.Ensemble.Workers = 3

			exp := New(cfg, reg, logger)
			Expect(exp.Setup()).To(Succeed())

			results, err := exp.RunEnsemble(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(50))

			single, err := exp.Build(12)
			Expect(err).NotTo(HaveOccurred())
			want, err := single.Run()
			Expect(err).NotTo(HaveOccurred())
			Expect(results[2].Trajectory.States).To(Equal(want.Trajectory.States))

			m, err := metrics.EnsembleMoments(ensemble.Trajectories(results), 100)
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Time).To(BeNumerically("~", 1.0, 1e-9))
			Expect(m.Variance[0]).To(BeNumerically(">", 0))
		})
	})
})
