package tiering

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Translator", func() {
	var t *Translator

	BeforeEach(func() {
		t = NewTranslator(8, 1024, 64)
	})

	It("should start with an identity mapping", func() {
		pra, err := t.Translate(0, 0)
		Expect(err).To(BeNil())
		Expect(pra).To(Equal(uint64(0)))

		pra, err = t.Translate(0, 65535)
		Expect(err).To(BeNil())
		Expect(pra).To(Equal(uint64(65535)))

		pra, err = t.Translate(7, 4096)
		Expect(err).To(BeNil())
		Expect(pra).To(Equal(uint64(4096)))
	})

	It("should split addresses into region number and offset", func() {
		Expect(t.RegionNumber(0)).To(Equal(uint64(0)))
		Expect(t.RegionNumber(63)).To(Equal(uint64(0)))
		Expect(t.RegionNumber(64)).To(Equal(uint64(1)))
		Expect(t.RegionNumber(65535)).To(Equal(uint64(1023)))

		Expect(t.RegionOffset(0)).To(Equal(uint64(0)))
		Expect(t.RegionOffset(63)).To(Equal(uint64(63)))
		Expect(t.RegionOffset(64)).To(Equal(uint64(0)))
		Expect(t.RegionOffset(65535)).To(Equal(uint64(63)))
	})

	It("should preserve the offset across a swap", func() {
		err := t.SwapRegions(0, 10, 20)
		Expect(err).To(BeNil())

		pra, err := t.Translate(0, 10*64+7)
		Expect(err).To(BeNil())
		Expect(t.RegionNumber(pra)).To(Equal(uint64(20)))
		Expect(t.RegionOffset(pra)).To(Equal(uint64(7)))
	})

	It("should update forward and inverse tables together on a swap", func() {
		err := t.SwapRegions(0, 10, 20)
		Expect(err).To(BeNil())

		prn, err := t.PRNForVRN(0, 10)
		Expect(err).To(BeNil())
		Expect(prn).To(Equal(uint64(20)))

		prn, err = t.PRNForVRN(0, 20)
		Expect(err).To(BeNil())
		Expect(prn).To(Equal(uint64(10)))

		vrn, err := t.VRNForPRN(0, 10)
		Expect(err).To(BeNil())
		Expect(vrn).To(Equal(uint64(20)))

		vrn, err = t.VRNForPRN(0, 20)
		Expect(err).To(BeNil())
		Expect(vrn).To(Equal(uint64(10)))
	})

	It("should restore the identity when a swap is repeated", func() {
		Expect(t.SwapRegions(3, 100, 200)).To(Succeed())
		Expect(t.SwapRegions(3, 100, 200)).To(Succeed())

		prn, _ := t.PRNForVRN(3, 100)
		Expect(prn).To(Equal(uint64(100)))

		prn, _ = t.PRNForVRN(3, 200)
		Expect(prn).To(Equal(uint64(200)))
	})

	It("should keep banks independent", func() {
		Expect(t.SwapRegions(2, 5, 6)).To(Succeed())

		for bank := uint64(0); bank < 8; bank++ {
			if bank == 2 {
				continue
			}

			prn, _ := t.PRNForVRN(bank, 5)
			Expect(prn).To(Equal(uint64(5)))

			prn, _ = t.PRNForVRN(bank, 6)
			Expect(prn).To(Equal(uint64(6)))
		}
	})

	It("should ignore a swap of a region with itself", func() {
		Expect(t.SwapRegions(0, 42, 42)).To(Succeed())

		prn, _ := t.PRNForVRN(0, 42)
		Expect(prn).To(Equal(uint64(42)))
		Expect(t.VerifyPermutation(0)).To(Succeed())
	})

	It("should reject out-of-range banks and regions without side effects", func() {
		_, err := t.Translate(8, 0)
		Expect(err).To(BeAssignableToTypeOf(&OutOfRangeError{}))

		_, err = t.Translate(0, 1024*64)
		Expect(err).To(BeAssignableToTypeOf(&OutOfRangeError{}))

		err = t.SwapRegions(0, 5, 1024)
		Expect(err).To(BeAssignableToTypeOf(&OutOfRangeError{}))

		prn, _ := t.PRNForVRN(0, 5)
		Expect(prn).To(Equal(uint64(5)))
		Expect(t.VerifyPermutation(0)).To(Succeed())
	})

	It("should keep a total permutation through many swaps", func() {
		swaps := [][2]uint64{
			{0, 1023}, {1, 2}, {1, 3}, {512, 0}, {512, 1023}, {7, 7},
		}

		for _, s := range swaps {
			Expect(t.SwapRegions(0, s[0], s[1])).To(Succeed())
		}

		Expect(t.VerifyPermutation(0)).To(Succeed())

		for vrn := uint64(0); vrn < 1024; vrn++ {
			prn, err := t.PRNForVRN(0, vrn)
			Expect(err).To(BeNil())

			back, err := t.VRNForPRN(0, prn)
			Expect(err).To(BeNil())
			Expect(back).To(Equal(vrn))
		}
	})

	It("should snapshot the forward table by copy", func() {
		snapshot, err := t.MappingSnapshot(1)
		Expect(err).To(BeNil())
		Expect(snapshot).To(HaveLen(1024))
		Expect(snapshot[17]).To(Equal(uint64(17)))

		snapshot[17] = 0
		prn, _ := t.PRNForVRN(1, 17)
		Expect(prn).To(Equal(uint64(17)))
	})

	It("should panic when the region size is not a power of two", func() {
		Expect(func() {
			NewTranslator(8, 1024, 48)
		}).To(PanicWith(BeAssignableToTypeOf(&ConfigError{})))
	})
})
