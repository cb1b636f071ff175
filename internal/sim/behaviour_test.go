package sim_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/heatsim/internal/heat"
	"github.com/san-kum/heatsim/internal/sim"
)

var _ = Describe("Simulator", func() {
	var (
		p   sim.Params
		rec *sim.Recorder
	)

	BeforeEach(func() {
		p = sim.DefaultParams()
		rec = sim.NewRecorder()
	})

	Context("with cold boundaries and a uniform rod", func() {
		BeforeEach(func() {
			p.Nx, p.Nt = 10, 20
			p.Alpha, p.Dx, p.Dt = 1, 1, 0.001
			p.U0, p.U1 = 0, 0
		})

		It("reports at steps 0 and 10", func() {
			res, err := sim.New().Run(p, rec)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Samples).To(HaveLen(2))
			Expect(rec.Samples[0].Step).To(Equal(0))
			Expect(rec.Samples[1].Step).To(Equal(10))
			Expect(rec.Samples[0].Time).To(BeNumerically("~", 0.001, 1e-15))
			Expect(rec.Samples[1].Time).To(BeNumerically("~", 0.011, 1e-15))
			Expect(res.Steps).To(Equal(20))
		})

		It("never reports more energy than the rod started with", func() {
			res, err := sim.New().Run(p, rec)
			Expect(err).NotTo(HaveOccurred())

			initial := heat.NewGrid(p.Points(), p.Dx, p.Init).Energy()
			Expect(initial).To(Equal(1.0 * (0.5*(1+1) + 9)))
			Expect(res.InitialEnergy).To(Equal(initial))
			for _, s := range rec.Samples {
				Expect(s.Energy).To(BeNumerically("<=", initial))
			}
			Expect(rec.Samples[1].Energy).To(BeNumerically("<", rec.Samples[0].Energy))
		})
	})

	Context("with boundaries equal to the initial temperature", func() {
		BeforeEach(func() {
			p.Nt = 200
			p.U0, p.U1 = 1, 1
		})

		It("conserves energy", func() {
			_, err := sim.New().Run(p, rec)
			Expect(err).NotTo(HaveOccurred())
			for _, s := range rec.Samples {
				Expect(s.Energy).To(BeNumerically("~", 10, 1e-12))
			}
		})
	})

	Context("with unequal boundaries", func() {
		BeforeEach(func() {
			p.Nt = 5000
			p.Dt = 0.45
			p.U0, p.U1 = 0, 4
			p.ReportEvery = 100
		})

		It("settles at the linear profile's energy", func() {
			_, err := sim.New().Run(p, rec)
			Expect(err).NotTo(HaveOccurred())

			// linear 0..4 over 10 intervals integrates to 20
			last := rec.Samples[len(rec.Samples)-1]
			Expect(last.Energy).To(BeNumerically("~", 20, 1e-9))
		})
	})

	Context("with an unstable diffusion number", func() {
		BeforeEach(func() {
			p.Nt = 400
			p.Dt = 1.5
			p.Init = heat.Sinusoidal
		})

		It("runs to completion without error", func() {
			Expect(p.DiffusionNumber()).To(BeNumerically(">", 0.5))
			res, err := sim.New().Run(p, rec)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Steps).To(Equal(400))
			Expect(rec.Samples).To(HaveLen(40))
		})
	})
})
