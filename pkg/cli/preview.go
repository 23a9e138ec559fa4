package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"policygen/database"
	"policygen/entities"
	"policygen/pkg/ai"
	"policygen/pkg/kb/embedder"
	"policygen/pkg/kb/repositoryImp"
	"policygen/pkg/pipeline"
	policyServiceImp "policygen/pkg/policy/serviceImp"
)

func newPreviewCmd(rt *runtime) *cobra.Command {
	var (
		k     int
		draft bool
	)
	cmd := &cobra.Command{
		Use:   "preview <query>",
		Short: "Show the documents retrieval would return for a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return fmt.Errorf("query is required")
			}
			db, err := database.OpenStore(rt.cfg.StorePath)
			if err != nil {
				return err
			}
			defer database.Close(db)

			emb := embedder.New(rt.cfg)
			if err := pipeline.CheckStore(cmd.Context(), repositoryImp.New(db), emb); err != nil {
				return err
			}
			kb, err := pipeline.NewKB(rt.cfg, db, emb, rt.log)
			if err != nil {
				return err
			}
			var (
				docs   []entities.Document
				policy string
			)
			if draft {
				// full prompt and generation path, answered by the offline mock
				resp, err := policyServiceImp.New(kb, ai.NewMock(""), k, rt.log).GeneratePolicy(cmd.Context(), query)
				if err != nil {
					return err
				}
				docs, policy = resp.RetrievedDocuments, resp.Policy
			} else if docs, err = kb.Search(cmd.Context(), query, k); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			head := color.New(color.FgCyan, color.Bold)
			dim := color.New(color.FgHiBlack)
			if draft {
				head.Fprintln(out, "Draft policy (mock generator)")
				fmt.Fprintln(out, policy)
				fmt.Fprintln(out)
			}
			head.Fprintf(out, "%d documents for %q (embedder %s)\n", len(docs), query, emb.Name())
			for i, d := range docs {
				score := 0.0
				if d.Score != nil {
					score = *d.Score
				}
				head.Fprintf(out, "\nDocument %d (Score: %.4f)\n", i+1, score)
				fmt.Fprintln(out, d.Content)
				dim.Fprintf(out, "%v\n", d.Meta)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&k, "top-k", "k", 0, "number of documents (default from config)")
	cmd.Flags().BoolVar(&draft, "draft", false, "also run prompt and generation with the mock generator")
	return cmd
}
