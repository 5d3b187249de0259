package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driving"
)

type askOptions struct {
	topK        int
	pdf         string
	html        string
	client      string
	price       float64
	json        bool
	interactive bool
}

func newAskCmd() *cobra.Command {
	opts := &askOptions{}
	cmd := &cobra.Command{
		Use:   "ask [request]",
		Short: "Ask for a restaurant recommendation",
		Long: `Load the venue catalog and answer one client request, or start an
interactive session with -i.

Requests may be written in any supported language; the answer comes back in
the same language. Use --pdf or --html to save the answer as a client proposal.

Examples:
  concierge ask "A quiet French restaurant in the 4th arrondissement for 6"
  concierge ask --pdf proposition.pdf --client "Mme Dupont" "Un dîner romantique"
  concierge ask -i`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, args, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.topK, "top-k", "k", 0, "venues to retrieve (default: TOP_K)")
	cmd.Flags().StringVar(&opts.pdf, "pdf", "", "save the answer as a PDF proposal at this path")
	cmd.Flags().StringVar(&opts.html, "html", "", "save the answer as an HTML proposal at this path")
	cmd.Flags().StringVar(&opts.client, "client", "", "client name printed on the proposal")
	cmd.Flags().Float64Var(&opts.price, "price", 0, "proposal price (default: PROPOSAL_DEFAULT_PRICE)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the full recommendation as JSON")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "start an interactive session")
	return cmd
}

func runAsk(cmd *cobra.Command, args []string, opts *askOptions) error {
	request := strings.TrimSpace(strings.Join(args, " "))
	if request == "" && !opts.interactive {
		return errors.New("a request is required unless --interactive is set")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := loadApp(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	status, err := a.catalog.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	a.logger.Debug("catalog loaded", "documents", status.Documents, "source", status.Source)

	out := cmd.OutOrStdout()
	if opts.interactive {
		return repl(ctx, cmd.InOrStdin(), out, a, opts)
	}

	rec, err := a.recommendations.Recommend(ctx, driving.RecommendRequest{Text: request, TopK: opts.topK})
	if err != nil {
		return fmt.Errorf("recommendation failed: %w", err)
	}

	if opts.json {
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal recommendation: %w", err)
		}
		fmt.Fprintln(out, string(data))
	} else {
		printRecommendation(out, rec)
	}

	for _, target := range []struct {
		path   string
		format domain.ProposalFormat
	}{
		{opts.pdf, domain.ProposalFormatPDF},
		{opts.html, domain.ProposalFormatHTML},
	} {
		if target.path == "" {
			continue
		}
		if err := saveProposal(ctx, a.proposals, rec, opts, target.path, target.format); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Proposal saved to %s\n", target.path)
	}
	return nil
}

// repl answers requests read line by line until EOF, "exit" or "quit".
// ":save <file>" writes the last answer as a proposal; the format follows
// the file extension.
func repl(ctx context.Context, in io.Reader, out io.Writer, a *app, opts *askOptions) error {
	scanner := bufio.NewScanner(in)
	var last *domain.Recommendation

	fmt.Fprintln(out, "Concierge - describe what your client is looking for (type 'exit' to quit)")
	fmt.Fprintln(out, "Use ':save <file.pdf|file.html>' to save the last answer as a proposal.")

	for {
		fmt.Fprint(out, "\n> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())

		switch {
		case input == "":
			continue
		case strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit"):
			return nil
		case strings.HasPrefix(input, ":save"):
			path := strings.TrimSpace(strings.TrimPrefix(input, ":save"))
			if last == nil || path == "" {
				fmt.Fprintln(out, "Nothing to save yet, or no file given.")
				continue
			}
			format := domain.ProposalFormatPDF
			if strings.EqualFold(filepath.Ext(path), ".html") {
				format = domain.ProposalFormatHTML
			}
			if err := saveProposal(ctx, a.proposals, last, opts, path, format); err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "Proposal saved to %s\n", path)
			continue
		}

		rec, err := a.recommendations.Recommend(ctx, driving.RecommendRequest{Text: input, TopK: opts.topK})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		last = rec
		printRecommendation(out, rec)
	}
}

func printRecommendation(w io.Writer, rec *domain.Recommendation) {
	fmt.Fprintln(w, rec.Answer)

	if len(rec.Sources) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Venues considered:")
		for i, src := range rec.Sources {
			fmt.Fprintf(w, "  [%d] %s, %s (%.2f)\n", i+1, src.Document.Venue.Name, src.Document.Venue.Address, src.Score)
		}
	}
	for _, d := range rec.Disclosures {
		fmt.Fprintf(w, "  ! %s is not in %s\n", d.Venue, d.RequestedLocation)
	}
}

func saveProposal(
	ctx context.Context,
	proposals driving.ProposalService,
	rec *domain.Recommendation,
	opts *askOptions,
	path string,
	format domain.ProposalFormat,
) error {
	doc, err := proposals.Render(ctx, driving.ProposalRequest{
		ClientName:     opts.client,
		ClientRequest:  rec.Query.Original,
		Recommendation: rec.Answer,
		Price:          opts.price,
		Language:       rec.Query.Language,
		Format:         format,
	})
	if err != nil {
		return fmt.Errorf("render proposal: %w", err)
	}
	if err := os.WriteFile(path, doc.Body, 0o644); err != nil {
		return fmt.Errorf("write proposal: %w", err)
	}
	return nil
}
