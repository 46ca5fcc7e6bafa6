package interact

import (
	"context"
	"io"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/springbox/internal/physics"
	"github.com/san-kum/springbox/internal/sim"
)

var _ = Describe("Controller", func() {
	var (
		s    *sim.Simulation
		c    *Controller
		root sim.AnchorID
		bob  sim.AnchorID
		arm  sim.SpringID
	)

	BeforeEach(func() {
		cfg := sim.DefaultConfig()
		cfg.GravityEnabled = false
		var err error
		s, err = sim.New(cfg, sim.WithLogger(log.New(io.Discard, "", 0)))
		Expect(err).NotTo(HaveOccurred())
		root, _ = s.AddAnchor(physics.V(0, 0), 1, physics.Static)
		bob, _ = s.AddAnchor(physics.V(0, -1), 1, physics.Free)
		arm, err = s.AddSpring(root, bob, physics.Linear, 8, nil, nil)
		Expect(err).NotTo(HaveOccurred())
		c = New(s)
	})

	Describe("dragging", func() {
		It("pins the pressed anchor and follows the pointer", func() {
			hit, err := c.Press(physics.V(0.02, -1), false)
			Expect(err).NotTo(HaveOccurred())
			Expect(hit).To(Equal(sim.Entity(bob)))

			Expect(c.Motion(physics.V(1.02, -2))).To(Succeed())
			Expect(s.Step()).To(Succeed())
			v, _ := s.Anchor(bob)
			Expect(v.Mode).To(Equal(physics.Pinned))
			Expect(v.Position.X).To(BeNumerically("~", 1, 1e-12))
			Expect(v.Position.Y).To(BeNumerically("~", -2, 1e-12))
			Expect(v.Selected).To(BeTrue())

			Expect(c.Release()).To(Succeed())
			v, _ = s.Anchor(bob)
			Expect(v.Mode).To(Equal(physics.Free))
			Expect(v.Velocity).To(Equal(physics.Vec2{}))
			_, dragging := c.Dragging()
			Expect(dragging).To(BeFalse())
		})

		It("returns a static anchor to static", func() {
			_, err := c.Press(physics.V(0, 0), false)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Motion(physics.V(0.5, 0.5))).To(Succeed())
			Expect(c.Release()).To(Succeed())

			v, _ := s.Anchor(root)
			Expect(v.Mode).To(Equal(physics.Static))
			Expect(v.Position).To(Equal(physics.V(0.5, 0.5)))
		})

		It("ends silently when the anchor disappears", func() {
			_, err := c.Press(physics.V(0, -1), false)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Remove(bob)).To(Succeed())

			Expect(c.Motion(physics.V(3, 3))).To(Succeed())
			_, dragging := c.Dragging()
			Expect(dragging).To(BeFalse())
			Expect(c.Release()).To(Succeed())
		})

		It("survives the anchor being culled mid drag while the loop runs", func() {
			Expect(s.Start(context.Background())).To(Succeed())
			defer func() {
				s.Stop()
				Expect(s.Wait()).To(Succeed())
			}()

			_, err := c.Press(physics.V(0, -1), false)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Motion(physics.V(100, 0))).To(Succeed())
			Eventually(func() error {
				_, err := s.Anchor(bob)
				return err
			}).Should(MatchError(physics.ErrNotFound))

			Expect(c.Motion(physics.V(0, 0))).To(Succeed())
			Expect(c.Release()).To(Succeed())
		})
	})

	Describe("selection", func() {
		It("selects a spring and clears on a miss", func() {
			hit, err := c.Press(physics.V(0.01, -0.5), false)
			Expect(err).NotTo(HaveOccurred())
			Expect(hit).To(Equal(sim.Entity(arm)))
			Expect(s.Selected()).To(ConsistOf(sim.Entity(arm)))

			hit, err = c.Press(physics.V(5, 5), false)
			Expect(err).NotTo(HaveOccurred())
			Expect(hit).To(BeNil())
			Expect(s.Selected()).To(BeEmpty())
		})

		It("keeps the selection when additive", func() {
			_, _ = c.Press(physics.V(0, 0), false)
			_ = c.Release()
			_, _ = c.Press(physics.V(0, -1), true)
			_ = c.Release()
			Expect(s.Selected()).To(ConsistOf(sim.Entity(root), sim.Entity(bob)))

			_, _ = c.Press(physics.V(5, 5), true)
			Expect(s.Selected()).To(HaveLen(2))
		})
	})

	Describe("editing", func() {
		It("places and links anchors", func() {
			a, err := c.Place(physics.V(1, 0), 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Selected()).To(ConsistOf(sim.Entity(a)))

			_, err = c.Link(physics.Quadratic, 2)
			Expect(err).To(MatchError(physics.ErrInvalidState))

			Expect(s.Select(bob)).To(Succeed())
			id, err := c.Link(physics.Quadratic, 2)
			Expect(err).NotTo(HaveOccurred())
			v, err := s.Spring(id)
			Expect(err).NotTo(HaveOccurred())
			Expect(v.Law).To(Equal(physics.Quadratic))
			Expect([]sim.AnchorID{v.Start, v.End}).To(ConsistOf(a, bob))
		})

		It("deletes the selection with its springs", func() {
			_, _ = c.Press(physics.V(0, -1), false)
			Expect(c.DeleteSelected()).To(Equal(2))
			_, dragging := c.Dragging()
			Expect(dragging).To(BeFalse())
			anchors, springs := s.Counts()
			Expect(anchors).To(Equal(1))
			Expect(springs).To(Equal(0))
		})

		It("toggles static on selected anchors except while dragged", func() {
			_, _ = c.Press(physics.V(0, -1), false)
			Expect(c.ToggleStatic()).To(Equal(0))
			_ = c.Release()

			Expect(c.ToggleStatic()).To(Equal(1))
			v, _ := s.Anchor(bob)
			Expect(v.Mode).To(Equal(physics.Static))
			Expect(c.ToggleStatic()).To(Equal(1))
			v, _ = s.Anchor(bob)
			Expect(v.Mode).To(Equal(physics.Free))
		})

		It("edits selected springs and anchors", func() {
			Expect(s.Select(arm)).To(Succeed())
			Expect(c.SetLaw(physics.Hyperbolic)).To(Equal(1))
			Expect(c.ScaleStiffness(0.5)).To(Equal(1))
			v, _ := s.Spring(arm)
			Expect(v.Law).To(Equal(physics.Hyperbolic))
			Expect(v.Stiffness).To(Equal(4.0))

			Expect(s.Select(bob)).To(Succeed())
			Expect(c.ScaleMass(4)).To(Equal(1))
			a, _ := s.Anchor(bob)
			Expect(a.Mass).To(Equal(4.0))
		})

		It("toggles pause", func() {
			Expect(c.TogglePause()).To(Equal(sim.Paused))
			Expect(c.TogglePause()).To(Equal(sim.Running))
		})
	})
})
