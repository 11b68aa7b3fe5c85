package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"quire/internal/projection"
)

type Format string

const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatPDF      Format = "pdf"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "md", "markdown":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want md, html or pdf)", s)
	}
}

type WriteOptions struct {
	Formats   []Format
	Overwrite bool
	// BaseName is the file name without extension. It defaults to "quire-export".
	BaseName string
	Render   RenderOptions
	PDF      PDFOptions
	// PDFRenderer overrides ChromePDF.
	PDFRenderer PDFRenderer
}

type WriteResult struct {
	Written []string `json:"written"`
}

// Document is a rendered export input: the views and bookmarks of the chosen subtree.
type Document struct {
	Views     []projection.View
	Bookmarks []projection.Bookmark
}

// Collect projects the export subtree (rootID "" means the whole document).
func Collect(src projection.Source, rootID string) (Document, error) {
	rootID = strings.TrimSpace(rootID)
	marks, err := projection.Outline(src, rootID)
	if err != nil {
		return Document{}, err
	}
	if rootID == "" {
		return Document{Views: projection.BuildForest(src), Bookmarks: marks}, nil
	}
	v, err := projection.BuildView(src, rootID)
	if err != nil {
		return Document{}, err
	}
	return Document{Views: []projection.View{v}, Bookmarks: marks}, nil
}

// Write renders doc in every requested format under toDir. Formats render concurrently; the
// first failure cancels the rest and nothing is reported as written.
func Write(ctx context.Context, doc Document, toDir string, opt WriteOptions) (WriteResult, error) {
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)
	if len(opt.Formats) == 0 {
		return WriteResult{}, errors.New("no export formats")
	}
	if err := os.MkdirAll(toDir, 0o755); err != nil {
		return WriteResult{}, err
	}
	base := strings.TrimSpace(opt.BaseName)
	if base == "" {
		base = "quire-export"
	}

	var (
		mu      sync.Mutex
		written = map[Format]string{}
	)
	g, gctx := errgroup.WithContext(ctx)
	seen := map[Format]bool{}
	for _, f := range opt.Formats {
		if seen[f] {
			continue
		}
		seen[f] = true
		f := f
		g.Go(func() error {
			b, err := Render(gctx, doc, f, opt)
			if err != nil {
				return err
			}
			p := filepath.Join(toDir, base+"."+string(f))
			if err := writeFile(p, b, opt.Overwrite); err != nil {
				return err
			}
			mu.Lock()
			written[f] = p
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return WriteResult{}, err
	}

	// Report in request order, not completion order.
	out := WriteResult{Written: []string{}}
	for _, f := range opt.Formats {
		if p, ok := written[f]; ok {
			out.Written = append(out.Written, p)
			delete(written, f)
		}
	}
	return out, nil
}

// Render produces one format in memory. Of opt, only Render, PDF and PDFRenderer matter.
func Render(ctx context.Context, doc Document, f Format, opt WriteOptions) ([]byte, error) {
	b, err := render(ctx, doc, f, opt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f, err)
	}
	return b, nil
}

func render(ctx context.Context, doc Document, f Format, opt WriteOptions) ([]byte, error) {
	renderPDF := opt.PDFRenderer
	if renderPDF == nil {
		renderPDF = ChromePDF
	}
	switch f {
	case FormatMarkdown:
		return []byte(RenderMarkdown(doc.Views, doc.Bookmarks, opt.Render)), nil
	case FormatHTML:
		page, err := RenderHTML(doc.Views, doc.Bookmarks, opt.Render)
		if err != nil {
			return nil, err
		}
		return []byte(page), nil
	case FormatPDF:
		pdfOpt := opt.PDF
		pdfOpt.Bookmarks = opt.Render.IncludeBookmarks
		// The printed outline replaces the on-page contents list.
		htmlOpt := opt.Render
		htmlOpt.IncludeBookmarks = false
		htmlOpt.LiveReload = ""
		page, err := RenderHTML(doc.Views, doc.Bookmarks, htmlOpt)
		if err != nil {
			return nil, err
		}
		return renderPDF(ctx, page, pdfOpt)
	default:
		return nil, fmt.Errorf("unknown format %q", f)
	}
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
