package main

import (
	"fmt"

	"github.com/OFFIS-RIT/lexgraph/backend/internal/storage"
	"github.com/OFFIS-RIT/lexgraph/backend/internal/util"

	"github.com/spf13/cobra"
)

var archivesPrefix string

func init() {
	rootCmd.AddCommand(archivesCmd)
	archivesCmd.Flags().StringVar(&archivesPrefix, "prefix", "", "Key prefix to list (default ARCHIVE_PREFIX or rdf)")
}

var archivesCmd = &cobra.Command{
	Use:   "archives",
	Short: "List interchange files archived in the S3 bucket",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		bucket := util.GetEnv("AWS_BUCKET")
		if bucket == "" {
			return fmt.Errorf("AWS_BUCKET is not set")
		}
		prefix := archivesPrefix
		if prefix == "" {
			prefix = util.GetEnvString("ARCHIVE_PREFIX", "rdf")
		}

		client, err := storage.NewS3Client(ctx)
		if err != nil {
			return err
		}
		keys, err := storage.ListFilesWithPrefix(ctx, client, bucket, prefix)
		if err != nil {
			return err
		}
		if keys == nil {
			keys = []string{}
		}
		return output(keys, func() {
			for _, k := range keys {
				fmt.Printf("s3://%s/%s\n", bucket, k)
			}
		})
	},
}
