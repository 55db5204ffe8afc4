package trace

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/QuangTung97/buddysim/allocator"
)

var _ = Describe("LogHook", func() {
	var (
		buf  *bytes.Buffer
		hook *LogHook
	)

	records := func() []map[string]any {
		var result []map[string]any
		for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
			if line == "" {
				continue
			}
			var r map[string]any
			Expect(json.Unmarshal([]byte(line), &r)).To(Succeed())
			result = append(result, r)
		}
		return result
	}

	Context("at debug level", func() {
		BeforeEach(func() {
			buf = &bytes.Buffer{}
			l := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
			hook = NewLogHook(l, "s1")
		})

		It("should log every entry with its step and kind", func() {
			a := allocator.New(allocator.Config{Capacity: 2, Hooks: []allocator.Hook{hook}})
			a.Allocate("A", 2)

			rs := records()
			Expect(rs).To(HaveLen(3))
			Expect(rs[0]["session"]).To(Equal("s1"))
			Expect(rs[0]["step"]).To(BeEquivalentTo(0))
			Expect(rs[0]["kind"]).To(Equal("initialized"))
			Expect(rs[2]["message"]).To(Equal("process A assigned (2) [color 0]"))
			Expect(rs[2]["level"]).To(Equal("DEBUG"))
		})
	})

	Context("at info level", func() {
		BeforeEach(func() {
			buf = &bytes.Buffer{}
			l := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
			hook = NewLogHook(l, "s2")
		})

		It("should only log rejected requests", func() {
			a := allocator.New(allocator.Config{Capacity: 2, Hooks: []allocator.Hook{hook}})
			a.Allocate("A", 2)
			a.Allocate("A", 1)
			a.Free("B")

			rs := records()
			Expect(rs).To(HaveLen(2))
			Expect(rs[0]["kind"]).To(Equal("duplicate"))
			Expect(rs[1]["kind"]).To(Equal("not_found"))
			Expect(rs[1]["level"]).To(Equal("INFO"))
		})
	})
})
