// Package main writes a development CA, a server certificate for the API
// stub and a client certificate into a directory.
//
//	go run ./tools/certgen --dir certs
//	authstub --tls-cert certs/server.crt --tls-key certs/server.key
//	gophauth --url https://localhost:8080 --ca certs/ca.crt
package main

import (
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/atinyakov/gophauth/internal/certgen"
)

func main() {
	if err := newRootCmd(afero.NewOsFs()).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(fs afero.Fs) *cobra.Command {
	var (
		dir      string
		hosts    []string
		clientCN string
	)
	cmd := &cobra.Command{
		Use:          "certgen",
		Short:        "Generate development TLS certificates",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := certgen.WriteDevSet(fs, dir, hosts, clientCN); err != nil {
				return err
			}
			cmd.Printf("Certificates generated into %s\n", dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "certs", "output directory")
	cmd.Flags().StringSliceVar(&hosts, "host", []string{"localhost", "127.0.0.1"}, "server certificate host names and IPs")
	cmd.Flags().StringVar(&clientCN, "client-cn", "gophauth", "client certificate common name")
	return cmd
}
