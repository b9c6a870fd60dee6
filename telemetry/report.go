package telemetry

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pthm-cable/pixelbreed/population"
)

// WriteReport writes the human readable progress report for a stage.
// Stage 0 is the report printed before the first stage runs.
func WriteReport(w io.Writer, stage int, entities []population.Entity) error {
	bw := bufio.NewWriter(w)
	if stage == 0 {
		fmt.Fprintln(bw, "Before stage 1:")
	} else {
		fmt.Fprintf(bw, "After stage %d:\n", stage)
	}
	fmt.Fprintf(bw, "Current population holds %d Pixels\n", len(entities))
	if len(entities) > 0 {
		fmt.Fprintln(bw, "See details below:")
		for _, e := range entities {
			fmt.Fprintf(bw, "  %s\n", e)
		}
	}
	return bw.Flush()
}

// TerminationNotice describes why a run stopped early.
func TerminationNotice(size, minimum, stage int) string {
	return fmt.Sprintf("population of %d pixels is below the reproducible minimum of %d; halting after stage %d",
		size, minimum, stage)
}
