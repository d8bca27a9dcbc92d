package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/husains/pulumi/pkg/rpc"
	"github.com/husains/pulumi/pkg/telemetry"
)

func newMarshalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "marshal <file.json>",
		Short: "Marshal a JSON property bag to the wire form",
		Long: `Marshal a JSON property bag to the protobuf Struct wire form.

The input file holds a plain JSON object; each top-level key is a property.
The output is the wire Struct rendered through protojson. Properties whose
value marshals to null are dropped, matching what the engine would receive.`,
		Example: `  # Marshal a property bag
  props marshal ./inputs.json

  # Marshal with debug logging of key translation
  props marshal -v ./inputs.json`,
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
			logger.WithField("file", args[0]).Debug("Marshalling property bag")

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read input file: %w", err)
			}

			var inputs map[string]any
			if err := json.Unmarshal(data, &inputs); err != nil {
				return fmt.Errorf("failed to parse input file: %w", err)
			}

			spanCtx, span := tel.Tracer.StartMarshalSpan(ctx, runID, "marshal")
			timer := telemetry.NewTimer()

			marshaler := &rpc.Marshaler{Label: runID}
			wire, deps, err := marshaler.MarshalProperties(spanCtx, inputs)
			if err != nil {
				telemetry.RecordError(span, err)
				span.End()
				tel.Metrics.RecordError(errorClass(err))
				return fmt.Errorf("failed to marshal properties: %w", err)
			}
			telemetry.RecordSuccess(span)
			span.End()
			tel.Metrics.RecordPropertiesMarshalled("marshal", len(wire.GetFields()))
			tel.Metrics.ObserveMarshalDuration("marshal", timer.Duration())

			rendered, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(wire)
			if err != nil {
				return fmt.Errorf("failed to render wire struct: %w", err)
			}
			fmt.Println(string(rendered))

			// Plain JSON input carries no resource references, but report the
			// dependency map anyway so piped bags stay inspectable.
			if jsonOutput {
				return nil
			}
			for key, keyDeps := range deps {
				if len(keyDeps) > 0 {
					fmt.Printf("property %q depends on %d resource(s)\n", key, len(keyDeps))
				}
			}
			return nil
		},
	}

	return cmd
}
