package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"portfolio-sync/internal/domain/content"
	"portfolio-sync/internal/repository"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	errUnknownFormat = errors.New("unknown format")
	errDuplicateID   = errors.New("duplicate id")
)

func exportCmd(logger func() *log.Logger) *cobra.Command {
	var domain, format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the stored list of a domain to stdout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := content.ParseDomain(domain)
			if err != nil {
				return err
			}
			return withSlots(logger(), func(ctx context.Context, slots repository.ContentSlots) error {
				switch d {
				case content.DomainWorkEntries:
					return exportSlot(ctx, slots.WorkEntries, format, cmd.OutOrStdout())
				case content.DomainCertificates:
					return exportSlot(ctx, slots.Certificates, format, cmd.OutOrStdout())
				default:
					return exportSlot(ctx, slots.Projects, format, cmd.OutOrStdout())
				}
			})
		},
	}
	cmd.Flags().StringVar(&domain, "domain", "", "work-entries, certificates or projects")
	cmd.Flags().StringVar(&format, "format", formatJSON, "json or yaml")
	_ = cmd.MarkFlagRequired("domain")
	return cmd
}

func importCmd(logger func() *log.Logger) *cobra.Command {
	var domain, file, format string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the stored list of a domain from a json or yaml file",
		Long: `Replace the stored list of a domain from a json or yaml file. Records
without an id get a fresh one. Every record is normalized and validated
before anything is written.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := content.ParseDomain(domain)
			if err != nil {
				return err
			}
			if format == "" {
				format = formatFromPath(file)
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			return withSlots(logger(), func(ctx context.Context, slots repository.ContentSlots) error {
				var n int
				switch d {
				case content.DomainWorkEntries:
					n, err = importSlot(ctx, slots.WorkEntries, format, data)
				case content.DomainCertificates:
					n, err = importSlot(ctx, slots.Certificates, format, data)
				default:
					n, err = importSlot(ctx, slots.Projects, format, data)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d %s\n", n, d)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&domain, "domain", "", "work-entries, certificates or projects")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the json or yaml file")
	cmd.Flags().StringVar(&format, "format", "", "json or yaml (default: from the file extension)")
	_ = cmd.MarkFlagRequired("domain")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	default:
		return formatJSON
	}
}

// exportSlot never writes: an absent or malformed slot is exported as the
// defaults a reader would be shown, and the store is left as it was.
func exportSlot[T content.Record[T]](ctx context.Context, slot *repository.Slot[T], format string, w io.Writer) error {
	items, present, err := slot.Read(ctx)
	switch {
	case err != nil && !errors.Is(err, repository.ErrMalformedContent):
		return err
	case err != nil || !present:
		items = slot.Defaults()
	}
	return encodeList(w, items, format)
}

func encodeList[T any](w io.Writer, items []T, format string) error {
	if items == nil {
		items = []T{}
	}
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(items)
	default:
		return fmt.Errorf("%w: %q", errUnknownFormat, format)
	}
}

func importSlot[T content.Record[T]](ctx context.Context, slot *repository.Slot[T], format string, data []byte) (int, error) {
	items, err := decodeList[T](data, format)
	if err != nil {
		return 0, err
	}
	items, err = prepareImport(items)
	if err != nil {
		return 0, err
	}
	if err := slot.Save(ctx, items); err != nil {
		return 0, err
	}
	return len(items), nil
}

func decodeList[T any](data []byte, format string) ([]T, error) {
	var items []T
	switch format {
	case formatJSON:
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, err
		}
	case formatYAML:
		if err := yaml.Unmarshal(data, &items); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownFormat, format)
	}
	return items, nil
}

// prepareImport normalizes every record, assigns ids where missing and
// rejects the list if any record is invalid or an id repeats.
func prepareImport[T content.Record[T]](items []T) ([]T, error) {
	out := make([]T, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if id := strings.TrimSpace(it.RecordID()); id != "" {
			seen[id] = struct{}{}
		}
	}
	taken := func(id string) bool {
		_, ok := seen[id]
		return ok
	}

	ids := make(map[string]struct{}, len(items))
	for i, it := range items {
		it = it.Normalize()
		if it.RecordID() == "" {
			it = it.WithID(content.NewID(taken))
			seen[it.RecordID()] = struct{}{}
		}
		if err := it.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if _, dup := ids[it.RecordID()]; dup {
			return nil, fmt.Errorf("record %d: %w %q", i, errDuplicateID, it.RecordID())
		}
		ids[it.RecordID()] = struct{}{}
		out = append(out, it)
	}
	return out, nil
}
