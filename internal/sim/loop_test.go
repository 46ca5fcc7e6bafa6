package sim

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/springbox/internal/physics"
)

var _ = Describe("Run loop", func() {
	var (
		s    *Simulation
		root AnchorID
		bob  AnchorID
	)

	BeforeEach(func() {
		cfg := DefaultConfig()
		cfg.SimToReal = 0.1
		var err error
		s, err = New(cfg, WithLogger(log.New(io.Discard, "", 0)))
		Expect(err).NotTo(HaveOccurred())
		root, err = s.AddAnchor(physics.V(0, 0), 1, physics.Static)
		Expect(err).NotTo(HaveOccurred())
		bob, err = s.AddAnchor(physics.V(0, -1), 1, physics.Free)
		Expect(err).NotTo(HaveOccurred())
		_, err = s.AddSpring(root, bob, physics.Linear, 8, nil, nil)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		s.Stop()
		Expect(s.Wait()).To(Or(Succeed(), MatchError(context.Canceled)))
	})

	It("steps on its own goroutine until stopped", func() {
		Expect(s.Start(context.Background())).To(Succeed())
		Eventually(s.Steps).Should(BeNumerically(">", 5))

		s.Stop()
		s.Stop()
		Expect(s.Wait()).To(Succeed())
		Expect(s.State()).To(Equal(Stopped))

		n := s.Steps()
		Consistently(s.Steps, 50*time.Millisecond).Should(Equal(n))
	})

	It("does not step while paused", func() {
		Expect(s.Start(context.Background())).To(Succeed())
		Eventually(s.Steps).Should(BeNumerically(">", 0))

		s.Pause()
		Expect(s.State()).To(Equal(Paused))
		n := s.Steps()
		Consistently(s.Steps, 50*time.Millisecond).Should(Equal(n))

		Expect(s.Toggle()).To(Equal(Running))
		Eventually(s.Steps).Should(BeNumerically(">", n))
	})

	It("stops with the context error when cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		errc := make(chan error, 1)
		go func() { errc <- s.Run(ctx) }()

		Eventually(s.Steps).Should(BeNumerically(">", 0))
		cancel()
		Eventually(errc).Should(Receive(MatchError(context.Canceled)))
		Expect(s.State()).To(Equal(Stopped))
	})

	It("refuses a second loop", func() {
		Expect(s.Start(context.Background())).To(Succeed())
		Expect(s.Start(context.Background())).To(MatchError(physics.ErrInvalidState))

		s.Stop()
		Expect(s.Wait()).To(Succeed())
		Expect(s.Run(context.Background())).To(MatchError(ErrStopped))
	})

	It("returns from Wait at once when never started", func() {
		Expect(s.Wait()).To(Succeed())
	})

	It("stays consistent under concurrent mutation", func() {
		Expect(s.Start(context.Background())).To(Succeed())

		var wg sync.WaitGroup
		deadline := time.Now().Add(100 * time.Millisecond)

		wg.Add(1)
		go func() {
			defer GinkgoRecover()
			defer wg.Done()
			for time.Now().Before(deadline) {
				a, err := s.AddAnchor(physics.V(1, 1), 1, physics.Free)
				Expect(err).NotTo(HaveOccurred())
				_, err = s.AddSpring(root, a, physics.Quadratic, 2, nil, nil)
				Expect(err).NotTo(HaveOccurred())
				Expect(s.Remove(a)).To(Succeed())
			}
		}()

		wg.Add(1)
		go func() {
			defer GinkgoRecover()
			defer wg.Done()
			Expect(s.BeginDrag(bob)).To(Succeed())
			for i := 0; time.Now().Before(deadline); i++ {
				p := physics.V(float64(i%10)/10, -1)
				Expect(s.SetDragPosition(bob, p)).To(Succeed())
			}
			Expect(s.EndDrag(bob)).To(Succeed())
		}()

		wg.Add(1)
		go func() {
			defer GinkgoRecover()
			defer wg.Done()
			for time.Now().Before(deadline) {
				snap := s.Snapshot()
				for _, sp := range snap.Springs {
					_, okStart := snap.Anchor(sp.Start)
					_, okEnd := snap.Anchor(sp.End)
					Expect(okStart && okEnd).To(BeTrue(), "spring %s references a missing anchor", sp.ID)
				}
			}
		}()

		wg.Wait()
		anchors, springs := s.Counts()
		Expect(anchors).To(Equal(2))
		Expect(springs).To(Equal(1))

		v, err := s.Anchor(bob)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Mode).To(Equal(physics.Free))
	})
})
