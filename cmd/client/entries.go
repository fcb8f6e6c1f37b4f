package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/atinyakov/daybook/internal/client"
	"github.com/atinyakov/daybook/internal/models"
	"github.com/atinyakov/daybook/internal/richtext"
	"github.com/spf13/cobra"
)

const (
	listDateLayout = "Mon Jan 02 2006 15:04"
	previewLen     = 48
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid entry id %q", s)
	}
	return id, nil
}

func preview(content string) string {
	text := richtext.ToPlainText(content)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	if r := []rune(text); len(r) > previewLen {
		text = string(r[:previewLen-1]) + "…"
	}
	return text
}

func printEntry(w io.Writer, e *models.Entry) {
	fmt.Fprintf(w, "#%d  %s  %s\n", e.ID, e.EntryDate.Local().Format(listDateLayout), e.PrimaryMood)
	if names := e.TagNames(); len(names) > 0 {
		fmt.Fprintf(w, "Tags: %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, richtext.ToPlainText(e.Content))
}

func newListCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your entries, newest first",
		Args:    cobra.NoArgs,
		RunE: s.withClient(func(cmd *cobra.Command, c *client.Client, _ []string) error {
			entries, err := c.ListEntries(cmd.Context())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No journal entries yet.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATE\tMOOD\tTAGS\tTEXT")
			for _, e := range entries {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
					e.ID, e.EntryDate.Local().Format(listDateLayout), e.PrimaryMood,
					strings.Join(e.TagNames(), ","), preview(e.Content))
			}
			return tw.Flush()
		}),
	}
}

func newShowCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one entry",
		Args:  cobra.ExactArgs(1),
		RunE: s.withClient(func(cmd *cobra.Command, c *client.Client, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := c.GetEntry(cmd.Context(), id)
			if err != nil {
				return err
			}
			printEntry(cmd.OutOrStdout(), e)
			return nil
		}),
	}
}

// entryFlags are the editable fields accepted on the command line.
// Content given with --content is plain text.
type entryFlags struct {
	content string
	mood    string
	tags    []string
}

func (f *entryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.content, "content", "c", "", "entry text (prompted when omitted)")
	cmd.Flags().StringVarP(&f.mood, "mood", "m", "", "mood, usually an emoji")
	cmd.Flags().StringSliceVarP(&f.tags, "tag", "t", nil, "tag, repeatable")
}

// input merges flags over def and prompts when no content flag was given.
func (f *entryFlags) input(cmd *cobra.Command, def client.EntryInput) (client.EntryInput, error) {
	if !cmd.Flags().Changed("content") {
		return client.PromptEntry(cmd.InOrStdin(), cmd.OutOrStdout(), def)
	}
	in := def
	in.Content = client.ToMarkup(f.content)
	if f.mood != "" {
		in.Mood = f.mood
	}
	if cmd.Flags().Changed("tag") {
		in.Tags = f.tags
	}
	return in, nil
}

func newWriteCmd(s *settings) *cobra.Command {
	var (
		flags entryFlags
		today bool
	)
	cmd := &cobra.Command{
		Use:   "write",
		Short: "Write a new entry",
		Args:  cobra.NoArgs,
		RunE: s.withClient(func(cmd *cobra.Command, c *client.Client, _ []string) error {
			in, err := flags.input(cmd, client.EntryInput{Mood: flags.mood, Tags: flags.tags})
			if err != nil {
				return err
			}
			e, msg, err := c.CreateEntry(cmd.Context(), in, today)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (#%d)\n", msg, e.ID)
			return nil
		}),
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&today, "today", false, "refuse if an entry already exists today")
	return cmd
}

func newEditCmd(s *settings) *cobra.Command {
	var flags entryFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Rewrite an entry; its date moves to now",
		Args:  cobra.ExactArgs(1),
		RunE: s.withClient(func(cmd *cobra.Command, c *client.Client, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			cur, err := c.GetEntry(cmd.Context(), id)
			if err != nil {
				return err
			}
			def := client.EntryInput{Content: cur.Content, Mood: cur.PrimaryMood, Tags: cur.TagNames()}
			if f := flags.mood; f != "" {
				def.Mood = f
			}
			in, err := flags.input(cmd, def)
			if err != nil {
				return err
			}
			_, msg, err := c.UpdateEntry(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		}),
	}
	flags.register(cmd)
	return cmd
}

func newDeleteCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an entry and its tags",
		Args:    cobra.ExactArgs(1),
		RunE: s.withClient(func(cmd *cobra.Command, c *client.Client, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			msg, err := c.DeleteEntry(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		}),
	}
}

func newStatsCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show entry count, streak and membership",
		Args:  cobra.NoArgs,
		RunE: s.withClient(func(cmd *cobra.Command, c *client.Client, _ []string) error {
			st, err := c.Stats(cmd.Context())
			if err != nil {
				return err
			}
			days := "days"
			if st.Streak == 1 {
				days = "day"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Entries: %d\nStreak: %d %s\nMember since: %s\n", st.TotalEntries, st.Streak, days, st.MemberSince)
			return nil
		}),
	}
}

func newExportCmd(s *settings) *cobra.Command {
	var (
		r   client.ExportRange
		out string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download your entries as a PDF",
		Long: `Download a PDF of every entry, of one day (--date) or of an inclusive
range (--from and --to). Dates are YYYY-MM-DD.`,
		Args: cobra.NoArgs,
		RunE: s.withClient(func(cmd *cobra.Command, c *client.Client, _ []string) error {
			for _, d := range []string{r.Date, r.From, r.To} {
				if d == "" {
					continue
				}
				if _, err := time.Parse("2006-01-02", d); err != nil {
					return fmt.Errorf("invalid date %q, want YYYY-MM-DD", d)
				}
			}
			exp, err := c.Export(cmd.Context(), r)
			if err != nil {
				return err
			}
			d := &client.FileDeliverer{Dir: out}
			if err := client.Save(cmd.Context(), d, exp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", d.Written)
			return nil
		}),
	}
	cmd.Flags().StringVar(&r.Date, "date", "", "export a single day")
	cmd.Flags().StringVar(&r.From, "from", "", "first day of the range")
	cmd.Flags().StringVar(&r.To, "to", "", "last day of the range")
	cmd.Flags().StringVarP(&out, "out", "o", ".", "directory to save the PDF in")
	cmd.MarkFlagsMutuallyExclusive("date", "from")
	cmd.MarkFlagsMutuallyExclusive("date", "to")
	cmd.MarkFlagsRequiredTogether("from", "to")
	return cmd
}
