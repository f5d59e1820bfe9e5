package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/vrtour/pkg/tour"
)

// roomsCommand creates the rooms command listing the rooms of a manifest.
func (c *CLI) roomsCommand() *cobra.Command {
	var noCache, refresh bool

	cmd := &cobra.Command{
		Use:   "rooms [manifest]",
		Short: "List the rooms of a house manifest",
		Long: `List the rooms of a house manifest with their facing and hotspots.

The manifest is a file path or an http(s) URL. Without an argument the
manifest.source setting is used. Hotspots pointing at rooms the manifest
does not define are flagged.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := c.loadHouse(cmd.Context(), firstArg(args), noCache, refresh)
			if err != nil {
				return err
			}
			fmt.Println(roomsTable(h))
			printStats(len(h.Rooms), len(h.Links()), len(h.Dangling()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the manifest cache")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "refetch a remote manifest even when cached")

	return cmd
}

// roomsTable renders one row per room. The entry room is marked with an
// arrow; links to unknown rooms are shown in the warning colour.
func roomsTable(h *tour.House) string {
	entry, hasEntry := h.Entry()
	names := make(map[int]string, len(h.Rooms))
	for _, r := range h.Rooms {
		names[r.ID] = r.Name
	}

	rows := make([][]string, 0, len(h.Rooms))
	for _, r := range h.Rooms {
		mark := ""
		if hasEntry && r.ID == entry.ID {
			mark = iconArrow
		}
		facing := r.Facing.English()
		if facing == "" {
			facing = "—"
		}
		rows = append(rows, []string{
			mark,
			strconv.Itoa(r.ID),
			r.Name,
			facing,
			strconv.Itoa(len(r.Hotspots)),
			linkList(r, names),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Room", "Facing", "Hotspots", "Links to").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == -1:
				return headerStyle.Padding(0, 1)
			case col == 0:
				return base.Foreground(colorCyan)
			case col == 1 || col == 4:
				return base.Foreground(colorCyan).Align(lipgloss.Right)
			case col == 3:
				return base.Foreground(colorGray)
			}
			return base
		}).
		Render()
}

// linkList names the hotspot targets of r in order.
func linkList(r tour.Room, names map[int]string) string {
	if len(r.Hotspots) == 0 {
		return StyleDim.Render("—")
	}
	parts := make([]string, len(r.Hotspots))
	for i, hs := range r.Hotspots {
		if name, ok := names[hs.Target]; ok {
			parts[i] = name
		} else {
			parts[i] = StyleWarning.Render(fmt.Sprintf("#%d?", hs.Target))
		}
	}
	return strings.Join(parts, ", ")
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
