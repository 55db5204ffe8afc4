package playback

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/QuangTung97/buddysim/allocator"
)

var _ = Describe("Player", func() {
	var (
		alloc  *allocator.Allocator
		player *Player
	)

	BeforeEach(func() {
		alloc = allocator.New(allocator.Config{Capacity: 8})
		alloc.Allocate("A", 4)
		player = New(alloc.History())
	})

	It("should start at the last entry", func() {
		Expect(player.Len()).To(Equal(5))
		Expect(player.Index()).To(Equal(4))
		Expect(player.AtEnd()).To(BeTrue())

		entry, ok := player.Current()
		Expect(ok).To(BeTrue())
		Expect(entry.Kind).To(Equal(allocator.EntryAssigned))
	})

	It("should not move past the last entry", func() {
		Expect(player.Next()).To(BeFalse())
		Expect(player.Index()).To(Equal(4))
	})

	It("should step back to the first entry and stop", func() {
		for i := 3; i >= 0; i-- {
			Expect(player.Prev()).To(BeTrue())
			Expect(player.Index()).To(Equal(i))
		}
		Expect(player.Prev()).To(BeFalse())

		entry, _ := player.Current()
		Expect(entry.Kind).To(Equal(allocator.EntryInitialized))
		Expect(entry.Snapshot.IsFree()).To(BeTrue())
	})

	It("should step forward again", func() {
		player.First()
		Expect(player.Next()).To(BeTrue())

		entry, _ := player.Current()
		Expect(entry.Message).To(Equal("evaluating block of size 8"))
		Expect(player.AtEnd()).To(BeFalse())
	})

	It("should clamp seek", func() {
		Expect(player.Seek(2)).To(Equal(2))
		Expect(player.Seek(-5)).To(Equal(0))
		Expect(player.Seek(100)).To(Equal(4))

		player.First()
		player.Last()
		Expect(player.Index()).To(Equal(4))
	})

	It("should show old snapshots after the allocator moves on", func() {
		player.Seek(4)
		alloc.Free("A")

		entry, _ := player.Current()
		occ, ok := entry.Snapshot.Left().Occupant()
		Expect(ok).To(BeTrue())
		Expect(occ.Name).To(Equal("A"))
	})

	It("should follow a new history to its end", func() {
		player.First()
		alloc.Free("A")
		player.Follow(alloc.History())

		Expect(player.Len()).To(Equal(7))
		Expect(player.Index()).To(Equal(6))
		entry, _ := player.Current()
		Expect(entry.Kind).To(Equal(allocator.EntryMerged))
	})

	Context("with an empty history", func() {
		BeforeEach(func() {
			player = New(nil)
		})

		It("should report no current entry", func() {
			_, ok := player.Current()
			Expect(ok).To(BeFalse())
			Expect(player.Next()).To(BeFalse())
			Expect(player.Prev()).To(BeFalse())
			Expect(player.Seek(3)).To(Equal(0))
			Expect(player.AtEnd()).To(BeTrue())
		})
	})
})
