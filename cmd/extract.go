package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyquiz/internal/extract"
	"github.com/abhisek/studyquiz/internal/topics"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Print the text extracted from a text, PDF or image file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		withTopics, _ := cmd.Flags().GetBool("topics")
		asJSON, _ := cmd.Flags().GetBool("json")

		in, err := readInput(args[0])
		if err != nil {
			return err
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		p, err := newPipeline(ctx, st, in.Kind == extract.KindImage || withTopics)
		if err != nil {
			return err
		}

		var seg extract.Segmenter
		if withTopics {
			seg = p.segmenter
		}
		res, err := p.extractor.ExtractWithTopics(ctx, in, seg)
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Content string         `json:"content"`
				Topics  []topics.Topic `json:"topics,omitempty"`
			}{string(res.Corpus), res.Topics})
		}

		fmt.Println(res.Corpus)
		if withTopics {
			fmt.Println()
			printTopics(res.Topics)
		}
		return nil
	},
}

var topicsCmd = &cobra.Command{
	Use:   "topics <file>",
	Short: "List the topics found in a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		in, err := readInput(args[0])
		if err != nil {
			return err
		}
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		p, err := newPipeline(ctx, st, true)
		if err != nil {
			return err
		}
		c, err := p.extractor.Extract(ctx, in)
		if err != nil {
			return err
		}
		ts, err := p.segmenter.Segment(ctx, c)
		if err != nil {
			return err
		}
		fmt.Printf("%d characters\n\n", c.Len())
		printTopics(ts)
		return nil
	},
}

func printTopics(ts []topics.Topic) {
	if len(ts) == 0 {
		fmt.Println("No topics found.")
		return
	}
	for i, t := range ts {
		fmt.Printf("%2d. %s\n", i+1, t.Title)
		if t.Description != "" {
			fmt.Printf("    %s\n", t.Description)
		}
		for _, sub := range t.Subtopics {
			fmt.Printf("      - %s\n", sub)
		}
	}
}

func init() {
	extractCmd.Flags().Bool("topics", false, "Also segment the text into topics")
	extractCmd.Flags().Bool("json", false, "Print the extraction as JSON")
}
