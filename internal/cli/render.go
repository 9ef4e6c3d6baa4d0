package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/GregMSThompson/finance-widgets/internal/models"
	"github.com/GregMSThompson/finance-widgets/pkg/logger"
)

const watchDebounce = 100 * time.Millisecond

var (
	renderFile  string
	renderWatch bool
	renderJSON  bool
)

var renderCmd = &cobra.Command{
	Use:   "render --file widget.yaml",
	Short: "Draw a widget definition from a local file",
	Long: `Render draws a widget stored in a YAML or JSON file without touching the
widget store. Rows in embeddedData keep the field order written in the file.
With --watch the widget is drawn again every time the file is saved.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		if err := renderWidgetFile(ctx, renderFile); err != nil {
			if !renderWatch {
				return err
			}
			fmt.Println(errorStyle.Render(err.Error()))
		}
		if !renderWatch {
			return nil
		}
		return watchFile(ctx, renderFile, func() {
			fmt.Print("\033[H\033[2J")
			if err := renderWidgetFile(ctx, renderFile); err != nil {
				fmt.Println(errorStyle.Render(err.Error()))
			}
		})
	},
}

func renderWidgetFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading widget file: %w", err)
	}
	w, err := decodeWidget(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return printWidget(ctx, w, renderJSON)
}

// decodeWidget accepts YAML or JSON. YAML goes through an ordered JSON copy
// so the widget decodes with the same rules as an API response.
func decodeWidget(data []byte) (*models.Widget, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing widget: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("parsing widget: empty document")
	}
	raw, err := nodeToJSON(doc.Content[0])
	if err != nil {
		return nil, err
	}

	var w models.Widget
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decoding widget: %w", err)
	}
	return &w, nil
}

// nodeToJSON writes a YAML node as JSON, keeping mapping keys in document order.
func nodeToJSON(n *yaml.Node) ([]byte, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return []byte("null"), nil
		}
		return nodeToJSON(n.Content[0])
	case yaml.AliasNode:
		return nodeToJSON(n.Alias)
	case yaml.MappingNode:
		var b bytes.Buffer
		b.WriteByte('{')
		for i := 0; i+1 < len(n.Content); i += 2 {
			if i > 0 {
				b.WriteByte(',')
			}
			key, err := json.Marshal(n.Content[i].Value)
			if err != nil {
				return nil, err
			}
			val, err := nodeToJSON(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			b.Write(key)
			b.WriteByte(':')
			b.Write(val)
		}
		b.WriteByte('}')
		return b.Bytes(), nil
	case yaml.SequenceNode:
		var b bytes.Buffer
		b.WriteByte('[')
		for i, c := range n.Content {
			if i > 0 {
				b.WriteByte(',')
			}
			val, err := nodeToJSON(c)
			if err != nil {
				return nil, err
			}
			b.Write(val)
		}
		b.WriteByte(']')
		return b.Bytes(), nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		// yaml timestamps decode to time.Time; keep them as written
		if _, ok := v.(time.Time); ok {
			v = n.Value
		}
		return json.Marshal(v)
	default:
		return nil, fmt.Errorf("line %d: unsupported yaml node", n.Line)
	}
}

// watchFile calls onChange after each burst of writes to path. Editors that
// save by rename are handled by watching the parent directory.
func watchFile(ctx context.Context, path string, onChange func()) error {
	log := logger.FromContext(ctx)

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}
	log.Info("watching widget file", "path", abs)

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				debounce = time.After(watchDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", "error", err)
		case <-debounce:
			debounce = nil
			onChange()
		}
	}
}

func init() {
	renderCmd.Flags().StringVarP(&renderFile, "file", "f", "", "widget definition (.yaml, .yml or .json)")
	renderCmd.Flags().BoolVar(&renderWatch, "watch", false, "redraw when the file changes")
	renderCmd.Flags().BoolVar(&renderJSON, "json", false, "print the tagged view as JSON")
	_ = renderCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(renderCmd)
}
