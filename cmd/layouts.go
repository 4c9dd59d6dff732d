package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/drgolem/ashowinfo/pkg/chlayout"
	"github.com/drgolem/ashowinfo/pkg/samplefmt"

	"github.com/spf13/cobra"
)

var layoutsCmd = &cobra.Command{
	Use:   "layouts",
	Short: "List channel layouts, channel names and sample formats",
	Long: `Print the tables used to name channel layouts and sample formats in frame
reports. Any layout name or channel list shown here is accepted by
'ashowinfo inspect --layout'.

Examples:
  # Show all tables
  ashowinfo layouts`,
	Args: cobra.NoArgs,
	Run:  runLayouts,
}

func init() {
	rootCmd.AddCommand(layoutsCmd)
}

func runLayouts(cmd *cobra.Command, args []string) {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, renderTable("Channel layouts", []string{"Name", "Channels", "Mask", "Order"},
		layoutRows(), []columnAlignment{alignLeft, alignRight, alignRight, alignLeft}))
	fmt.Fprintln(out, renderTable("Channels", []string{"Bit", "Name"},
		channelRows(), []columnAlignment{alignRight, alignLeft}))
	fmt.Fprintln(out, renderTable("Sample formats", []string{"Name", "Bytes", "Planar", "Float"},
		sampleFormatRows(), []columnAlignment{alignLeft, alignRight, alignLeft, alignLeft}))
}

func layoutRows() [][]string {
	named := chlayout.Named()
	rows := make([][]string, 0, len(named))
	for _, n := range named {
		rows = append(rows, []string{
			n.Name,
			strconv.Itoa(n.Layout.NbChannels()),
			fmt.Sprintf("0x%X", uint64(n.Layout)),
			strings.Join(n.Layout.Channels(), "+"),
		})
	}
	return rows
}

func channelRows() [][]string {
	var rows [][]string
	for i := 0; i < chlayout.MaxChannels; i++ {
		name := chlayout.ChannelName(i)
		if name == "" {
			continue
		}
		rows = append(rows, []string{strconv.Itoa(i), name})
	}
	return rows
}

func sampleFormatRows() [][]string {
	formats := samplefmt.All()
	rows := make([][]string, 0, len(formats))
	for _, f := range formats {
		rows = append(rows, []string{
			f.Name(),
			strconv.Itoa(f.BytesPerSample()),
			strconv.FormatBool(f.IsPlanar()),
			strconv.FormatBool(f.IsFloat()),
		})
	}
	return rows
}
