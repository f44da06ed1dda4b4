package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/docsearch/pkg/client"
)

// docSource is the shared --title/--content/--file/--type flag set.
type docSource struct {
	title    string
	content  string
	file     string
	fileType string
}

func (d *docSource) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&d.title, "title", "t", "", "document title (defaults to the file name)")
	f.StringVar(&d.content, "content", "", "document text")
	f.StringVarP(&d.file, "file", "f", "", "read document text from a file")
	f.StringVar(&d.fileType, "type", "", "file type: text, markdown, html, pdf (defaults from the file extension)")
	cmd.MarkFlagsMutuallyExclusive("content", "file")
	cmd.MarkFlagsOneRequired("content", "file")
}

// resolve reads the file if one was given and fills title and type defaults.
func (d *docSource) resolve() (title, content, fileType string, err error) {
	title, content, fileType = d.title, d.content, d.fileType
	if d.file != "" {
		data, err := os.ReadFile(filepath.Clean(d.file))
		if err != nil {
			return "", "", "", fmt.Errorf("read %s: %w", d.file, err)
		}
		content = string(data)
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(d.file), filepath.Ext(d.file))
		}
		if fileType == "" {
			fileType = fileTypeFromExt(d.file)
		}
	}
	if strings.TrimSpace(title) == "" {
		return "", "", "", errors.New("--title is required")
	}
	return title, content, fileType, nil
}

func fileTypeFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return "markdown"
	case ".html", ".htm":
		return "html"
	case ".pdf":
		return "pdf"
	default:
		return "text"
	}
}

func newUploadCmd(a *app) *cobra.Command {
	var src docSource
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Store and index a new document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			title, content, fileType, err := src.resolve()
			if err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}

			up, err := c.Upload(cmd.Context(), client.UploadRequest{Title: title, Content: content, FileType: fileType})
			if err != nil {
				return fmt.Errorf("upload: %w", err)
			}

			out := cmd.OutOrStdout()
			if a.jsonMode() {
				return printJSON(out, up)
			}
			_, _ = fmt.Fprintf(out, "%s %s as %s (%d terms)\n",
				okText("uploaded"), up.Document.Title, boldText(up.Document.ID), up.TermsIndexed)
			return nil
		},
	}
	src.register(cmd)
	return cmd
}

func newIndexCmd(a *app) *cobra.Command {
	var src docSource
	cmd := &cobra.Command{
		Use:   "index <document-id>",
		Short: "Index a document under an existing id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title, content, fileType, err := src.resolve()
			if err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}

			n, err := c.Index(cmd.Context(), client.IndexRequest{
				DocumentID: args[0], Title: title, Content: content, FileType: fileType,
			})
			if err != nil {
				return fmt.Errorf("index %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			if a.jsonMode() {
				return printJSON(out, map[string]any{"success": true, "termsIndexed": n})
			}
			_, _ = fmt.Fprintf(out, "%s %s (%d terms)\n", okText("indexed"), args[0], n)
			return nil
		},
	}
	src.register(cmd)
	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <document-id>",
		Short: "Show a stored document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			doc, err := c.Get(cmd.Context(), args[0])
			if errors.Is(err, client.ErrNotFound) {
				return fmt.Errorf("document %s not found", args[0])
			}
			if err != nil {
				return fmt.Errorf("get %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			if a.jsonMode() {
				return printJSON(out, doc)
			}
			printDocument(out, &doc)
			return nil
		},
	}
}

func newCountCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of stored documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			n, err := c.Count(cmd.Context())
			if err != nil {
				return fmt.Errorf("count: %w", err)
			}

			out := cmd.OutOrStdout()
			if a.jsonMode() {
				return printJSON(out, map[string]int{"count": n})
			}
			_, _ = fmt.Fprintln(out, n)
			return nil
		},
	}
}
