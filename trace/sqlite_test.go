package trace

import (
	"errors"
	"io/fs"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/QuangTung97/buddysim/allocator"
)

var _ = Describe("SQLiteWriter", func() {
	var (
		dbPath string
		writer *SQLiteWriter
		reader *SQLiteReader
	)

	BeforeEach(func() {
		dbPath = filepath.Join(GinkgoT().TempDir(), "trace")
		writer = NewSQLiteWriter(dbPath)
		Expect(writer.Init()).To(Succeed())
	})

	AfterEach(func() {
		Expect(writer.Close()).To(Succeed())
		if reader != nil && reader.DB != nil {
			reader.DB.Close()
		}
		reader = nil
	})

	openReader := func() {
		reader = NewSQLiteReader(dbPath)
		Expect(reader.Init()).To(Succeed())
	}

	It("should refuse an existing file", func() {
		other := NewSQLiteWriter(dbPath)
		Expect(other.Init()).NotTo(Succeed())
	})

	It("should pick a unique name when none is given", func() {
		w := NewSQLiteWriter("")
		Expect(w.FileName()).To(HavePrefix("buddysim_trace_"))
		Expect(w.FileName()).To(HaveSuffix(".sqlite3"))
		Expect(w.Close()).To(Succeed())
	})

	It("should record every history entry of a session", func() {
		a := allocator.New(allocator.Config{
			Capacity: 1000,
			Hooks:    []allocator.Hook{writer.Hook("s1")},
		})
		a.Allocate("P1", 200)
		a.Allocate("P2", 100)
		Expect(writer.Flush()).To(Succeed())

		openReader()
		steps, err := reader.ListSteps("s1")
		Expect(err).NotTo(HaveOccurred())
		Expect(steps).To(HaveLen(len(a.History())))

		for i, s := range steps {
			entry := a.History()[i]
			Expect(s.Session).To(Equal("s1"))
			Expect(s.Generation).To(Equal(0))
			Expect(s.Step).To(Equal(entry.Step))
			Expect(s.Kind).To(Equal(entry.Kind.String()))
			Expect(s.Message).To(Equal(entry.Message))
			Expect(s.Capacity).To(Equal(1024))
		}
		Expect(steps[0].Snapshot).To(MatchJSON(`{"size":1024,"leaf":true,"free":true}`))

		last := steps[len(steps)-1]
		segments, err := reader.ListSegments("s1", last.Generation, last.Step)
		Expect(err).NotTo(HaveOccurred())
		Expect(segments).To(Equal(a.Layout()))
	})

	It("should bump the generation on reset", func() {
		a := allocator.New(allocator.Config{Capacity: 8})
		a.AcceptHook(writer.Hook("s1"))
		a.Allocate("A", 8)
		a.ResetCapacity(16)
		a.Free("A")
		Expect(writer.Flush()).To(Succeed())

		openReader()
		steps, err := reader.ListSteps("s1")
		Expect(err).NotTo(HaveOccurred())
		Expect(steps).To(HaveLen(4))

		Expect(steps[0].Generation).To(Equal(0))
		Expect(steps[0].Kind).To(Equal("evaluating"))
		Expect(steps[2].Generation).To(Equal(1))
		Expect(steps[2].Step).To(Equal(0))
		Expect(steps[2].Message).To(Equal("memory reinitialized"))
		Expect(steps[3].Kind).To(Equal("not_found"))
	})

	It("should keep sessions apart", func() {
		a := allocator.New(allocator.Config{Capacity: 4, Hooks: []allocator.Hook{writer.Hook("a")}})
		b := allocator.New(allocator.Config{Capacity: 4, Hooks: []allocator.Hook{writer.Hook("b")}})
		a.Allocate("X", 1)
		b.Free("Y")
		Expect(writer.Flush()).To(Succeed())

		openReader()
		sessions, err := reader.ListSessions()
		Expect(err).NotTo(HaveOccurred())
		Expect(sessions).To(Equal([]string{"a", "b"}))

		steps, err := reader.ListSteps("b")
		Expect(err).NotTo(HaveOccurred())
		Expect(steps).To(HaveLen(2))
	})

	It("should flush automatically when the batch is full", func() {
		writer.WithBatchSize(2)
		a := allocator.New(allocator.Config{Capacity: 4, Hooks: []allocator.Hook{writer.Hook("s")}})
		a.Free("missing")

		Expect(writer.pending).To(BeEmpty())

		openReader()
		steps, err := reader.ListSteps("s")
		Expect(err).NotTo(HaveOccurred())
		Expect(steps).To(HaveLen(2))
	})

	It("should report a missing trace", func() {
		r := NewSQLiteReader(filepath.Join(GinkgoT().TempDir(), "none"))
		err := r.Init()
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, fs.ErrNotExist)).To(BeTrue())
	})
})
