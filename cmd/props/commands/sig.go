package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/husains/pulumi/pkg/rpc"
)

func newSigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sig",
		Short: "Print the reserved wire signature constants",
		Long: `Print the reserved signature constants the wire protocol uses to
distinguish tagged maps from plain user maps, plus the unknown sentinel.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			constants := map[string]string{
				"signature_key":     rpc.SigKey,
				"asset_signature":   rpc.AssetSig,
				"archive_signature": rpc.ArchiveSig,
				"secret_signature":  rpc.SecretSig,
				"unknown_sentinel":  rpc.UnknownValue,
			}

			if jsonOutput {
				rendered, err := json.MarshalIndent(constants, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(rendered))
				return nil
			}

			fmt.Printf("signature key:      %s\n", rpc.SigKey)
			fmt.Printf("asset signature:    %s\n", rpc.AssetSig)
			fmt.Printf("archive signature:  %s\n", rpc.ArchiveSig)
			fmt.Printf("secret signature:   %s\n", rpc.SecretSig)
			fmt.Printf("unknown sentinel:   %s\n", rpc.UnknownValue)
			return nil
		},
	}

	return cmd
}
