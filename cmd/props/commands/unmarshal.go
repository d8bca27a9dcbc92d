package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/husains/pulumi/pkg/resource"
	"github.com/husains/pulumi/pkg/rpc"
	"github.com/husains/pulumi/pkg/telemetry"
)

func newUnmarshalCommand() *cobra.Command {
	var (
		preview      bool
		keepUnknowns bool
	)

	cmd := &cobra.Command{
		Use:   "unmarshal <file.json>",
		Short: "Unmarshal a wire Struct back to native form",
		Long: `Unmarshal a protobuf Struct wire value back to its native form.

The input file holds the wire JSON as produced by 'props marshal' or captured
from an engine exchange. Signature-tagged maps rehydrate to their concrete
values: secrets render as {"!secret": ...}, assets and archives by their
content source, and the unknown sentinel as "!unknown" when kept.`,
		Example: `  # Unmarshal a captured wire struct
  props unmarshal ./wire.json

  # Treat the input as a preview exchange (unknown sentinels survive)
  props unmarshal --preview ./wire.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			tel, err := buildTelemetry(cfg)
			if err != nil {
				return err
			}
			ctx := tel.WithContext(cmd.Context())
			defer func() {
				if err := tel.Shutdown(ctx); err != nil {
					log.Warn().Err(err).Msg("Telemetry shutdown failed")
				}
			}()

			runID := uuid.New().String()
			logger := tel.Logger.WithField("run_id", runID)
			logger.WithField("file", args[0]).Debug("Unmarshalling wire struct")

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read input file: %w", err)
			}

			wire := &structpb.Struct{}
			if err := protojson.Unmarshal(data, wire); err != nil {
				return fmt.Errorf("failed to parse wire struct: %w", err)
			}

			_, span := tel.Tracer.StartMarshalSpan(ctx, runID, "unmarshal")
			timer := telemetry.NewTimer()

			unmarshaler := &rpc.Unmarshaler{
				Session: &rpc.Session{
					DryRun:      preview || cfg.Session.DryRun,
					LegacyApply: cfg.Session.LegacyApply,
				},
				KeepUnknowns: keepUnknowns,
			}
			native, err := unmarshaler.UnmarshalProperties(wire)
			if err != nil {
				telemetry.RecordError(span, err)
				span.End()
				tel.Metrics.RecordError(errorClass(err))
				return fmt.Errorf("failed to unmarshal properties: %w", err)
			}
			telemetry.RecordSuccess(span)
			span.End()
			tel.Metrics.RecordPropertiesMarshalled("unmarshal", propertyCount(native))
			tel.Metrics.ObserveMarshalDuration("unmarshal", timer.Duration())

			// Rendering prints secret payloads in the clear, so account for
			// every one of them before doing it.
			var secretPaths []string
			var unknowns int
			collectMarkers("", native, &secretPaths, &unknowns)
			for i := 0; i < unknowns; i++ {
				tel.Metrics.RecordUnknownEncountered()
			}
			for _, path := range secretPaths {
				tel.Metrics.RecordSecretSent(false)
				if err := tel.Events.PublishSecretSentClear(runID, path); err != nil {
					logger.WithField("property", path).WithError(err).Warn("Failed to publish secret event")
				}
			}

			rendered, err := json.MarshalIndent(renderValue(native), "", "  ")
			if err != nil {
				return fmt.Errorf("failed to render native value: %w", err)
			}
			fmt.Println(string(rendered))
			return nil
		},
	}

	cmd.Flags().BoolVar(&preview, "preview", false, "treat the input as a preview exchange")
	cmd.Flags().BoolVar(&keepUnknowns, "keep-unknowns", false, "keep unknown markers outside previews")

	return cmd
}

// renderValue rewrites runtime marker types into plain JSON-encodable values.
func renderValue(v any) any {
	switch val := v.(type) {
	case resource.Secret:
		return map[string]any{"!secret": renderValue(val.Element)}
	case resource.Unknown:
		return "!unknown"
	case *resource.FileAsset:
		return map[string]any{"!asset": map[string]any{"path": val.Path}}
	case *resource.StringAsset:
		return map[string]any{"!asset": map[string]any{"text": val.Text}}
	case *resource.RemoteAsset:
		return map[string]any{"!asset": map[string]any{"uri": val.URI}}
	case *resource.FileArchive:
		return map[string]any{"!archive": map[string]any{"path": val.Path}}
	case *resource.RemoteArchive:
		return map[string]any{"!archive": map[string]any{"uri": val.URI}}
	case *resource.AssetArchive:
		members := make(map[string]any, len(val.Assets))
		for name, member := range val.Assets {
			members[name] = renderValue(member)
		}
		return map[string]any{"!archive": map[string]any{"assets": members}}
	case map[string]any:
		out := make(map[string]any, len(val))
		for key, elem := range val {
			out[key] = renderValue(elem)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = renderValue(elem)
		}
		return out
	default:
		return v
	}
}
