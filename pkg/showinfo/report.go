package showinfo

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/drgolem/ashowinfo/pkg/audioframe"
)

// NoPTSString is printed in place of pts_time when a frame has no timestamp.
// The raw pts field always carries the integer, sentinel included.
const NoPTSString = "NOPTS"

// Report describes one inspected frame.
type Report struct {
	N              uint64  // Frame index, starting at 0
	PTS            int64   // Raw timestamp, or audioframe.NoPTS
	PTSTime        float64 // PTS in seconds; NaN when PTS is unknown
	SampleFormat   string
	Layout         string
	SampleRate     int
	NbSamples      int
	Checksum       uint32 // Aggregate checksum over all planes
	PlaneChecksums []uint32
}

// HasPTS reports whether the frame carried a timestamp.
func (r *Report) HasPTS() bool {
	return r.PTS != audioframe.NoPTS
}

// PTSString renders the raw timestamp. An unknown timestamp prints as the
// audioframe.NoPTS value itself.
func (r *Report) PTSString() string {
	return strconv.FormatInt(r.PTS, 10)
}

// PTSTimeString renders the timestamp in seconds with six decimals.
func (r *Report) PTSTimeString() string {
	if !r.HasPTS() || math.IsNaN(r.PTSTime) {
		return NoPTSString
	}
	return strconv.FormatFloat(r.PTSTime, 'f', 6, 64)
}

// Line renders the frame summary line.
func (r *Report) Line() string {
	return fmt.Sprintf("n:%d pts:%s pts_time:%s fmt:%s chlayout:%s rate:%d nb_samples:%d checksum:%08X",
		r.N, r.PTSString(), r.PTSTimeString(), r.SampleFormat, r.Layout,
		r.SampleRate, r.NbSamples, r.Checksum)
}

// PlaneLine renders the per-plane checksum line.
func (r *Report) PlaneLine() string {
	var sb strings.Builder
	sb.WriteString("plane_checksums: [ ")
	for _, c := range r.PlaneChecksums {
		fmt.Fprintf(&sb, "%08X ", c)
	}
	sb.WriteString("]")
	return sb.String()
}

// String renders both report lines, each terminated by a newline.
func (r *Report) String() string {
	return r.Line() + "\n" + r.PlaneLine() + "\n"
}
