package tiering

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("StatsCollector", func() {
	var c *StatsCollector

	BeforeEach(func() {
		c = NewStatsCollector(8, 1024, 2.0, 1.0)
	})

	It("should start every region at zero heat", func() {
		heat, err := c.Heat(0, 0)
		Expect(err).To(BeNil())
		Expect(heat).To(Equal(0.0))

		heat, err = c.Heat(7, 1023)
		Expect(err).To(BeNil())
		Expect(heat).To(Equal(0.0))
	})

	It("should weigh writes and reads separately", func() {
		for i := 0; i < 3; i++ {
			Expect(c.RecordAccess(0, 5, true)).To(Succeed())
		}
		for i := 0; i < 4; i++ {
			Expect(c.RecordAccess(0, 5, false)).To(Succeed())
		}

		reads, writes := c.Counts(0, 5)
		Expect(reads).To(Equal(uint64(4)))
		Expect(writes).To(Equal(uint64(3)))

		heat, err := c.Heat(0, 5)
		Expect(err).To(BeNil())
		Expect(heat).To(Equal(2.0*3 + 1.0*4))
	})

	It("should keep counters of different regions and banks apart", func() {
		Expect(c.RecordAccess(1, 10, true)).To(Succeed())
		Expect(c.RecordAccess(2, 10, false)).To(Succeed())

		heat, _ := c.Heat(1, 10)
		Expect(heat).To(Equal(2.0))

		heat, _ = c.Heat(2, 10)
		Expect(heat).To(Equal(1.0))

		heat, _ = c.Heat(1, 11)
		Expect(heat).To(Equal(0.0))
	})

	It("should zero all counters at an epoch reset", func() {
		Expect(c.RecordAccess(0, 1, true)).To(Succeed())
		Expect(c.RecordAccess(3, 900, false)).To(Succeed())

		c.ResetEpoch()

		heat, _ := c.Heat(0, 1)
		Expect(heat).To(Equal(0.0))

		heat, _ = c.Heat(3, 900)
		Expect(heat).To(Equal(0.0))
	})

	It("should reject out-of-range records without state change", func() {
		err := c.RecordAccess(8, 0, true)
		Expect(err).To(BeAssignableToTypeOf(&OutOfRangeError{}))

		err = c.RecordAccess(0, 1024, false)
		Expect(err).To(BeAssignableToTypeOf(&OutOfRangeError{}))

		_, err = c.Heat(0, 1024)
		Expect(err).To(BeAssignableToTypeOf(&OutOfRangeError{}))
	})
})
