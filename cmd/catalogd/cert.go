package main

import (
	"fmt"
	"net"

	"github.com/cuemby/catalogd/pkg/security"
	"github.com/spf13/cobra"
)

var certCmd = &cobra.Command{
	Use:     "cert",
	Aliases: []string{"certs", "certificate"},
	Short:   "Manage the mTLS certificates the facade server and its callers use",
}

var certInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a root CA and a facade server certificate for local use",
	RunE: func(cmd *cobra.Command, args []string) error {
		serverName, _ := cmd.Flags().GetString("server-name")
		hosts, _ := cmd.Flags().GetStringSlice("hosts")

		certDir, err := security.GetCertDir("catalogd", serverName)
		if err != nil {
			return fmt.Errorf("resolve cert directory: %w", err)
		}

		if security.CAExists(certDir) {
			return fmt.Errorf("CA already exists at %s; remove it first to regenerate", certDir)
		}

		ca := security.NewCertAuthority()
		if err := ca.Initialize(); err != nil {
			return fmt.Errorf("initialize CA: %w", err)
		}
		if err := security.SaveCACertToFile(ca.GetRootCACert(), certDir); err != nil {
			return fmt.Errorf("save CA certificate: %w", err)
		}
		if err := security.SaveCAKeyToFile(ca.RootKey(), certDir); err != nil {
			return fmt.Errorf("save CA key: %w", err)
		}

		ips := make([]net.IP, 0, len(hosts))
		dnsNames := make([]string, 0, len(hosts))
		for _, h := range hosts {
			if ip := net.ParseIP(h); ip != nil {
				ips = append(ips, ip)
			} else {
				dnsNames = append(dnsNames, h)
			}
		}
		cert, err := ca.IssueServerCertificate(serverName, dnsNames, ips)
		if err != nil {
			return fmt.Errorf("issue server certificate: %w", err)
		}
		// Verify the freshly issued leaf chains back to the root before
		// ever writing it to disk, catching a broken CA at mint time
		// rather than at the first TLS handshake.
		if err := ca.VerifyCertificate(cert.Leaf); err != nil {
			return fmt.Errorf("issued server certificate failed self-verification: %w", err)
		}
		if err := security.SaveCertToFile(cert, certDir); err != nil {
			return fmt.Errorf("save server certificate: %w", err)
		}

		fmt.Printf("CA and server certificate written to %s\n", certDir)
		return nil
	},
}

var certStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report expiry and rotation status for the server certificate",
	RunE: func(cmd *cobra.Command, args []string) error {
		serverName, _ := cmd.Flags().GetString("server-name")

		certDir, err := security.GetCertDir("catalogd", serverName)
		if err != nil {
			return fmt.Errorf("resolve cert directory: %w", err)
		}
		if !security.CertExists(certDir) {
			return fmt.Errorf("no server certificate found at %s; run 'catalogd cert init' first", certDir)
		}

		caCert, err := security.LoadCACertFromFile(certDir)
		if err != nil {
			return fmt.Errorf("load CA certificate: %w", err)
		}
		cert, err := security.LoadCertFromFile(certDir)
		if err != nil {
			return fmt.Errorf("load server certificate: %w", err)
		}

		if err := security.ValidateCertChain(cert.Leaf, caCert); err != nil {
			return fmt.Errorf("server certificate does not chain to the stored CA: %w", err)
		}

		for k, v := range security.GetCertInfo(cert.Leaf) {
			fmt.Printf("%s: %v\n", k, v)
		}
		fmt.Printf("expires_at: %s\n", security.GetCertExpiry(cert.Leaf).Format("2006-01-02T15:04:05Z07:00"))
		fmt.Printf("time_remaining: %s\n", security.GetCertTimeRemaining(cert.Leaf))
		fmt.Printf("needs_rotation: %v\n", security.CertNeedsRotation(cert.Leaf))
		return nil
	},
}

var certClientCmd = &cobra.Command{
	Use:   "client",
	Short: "Issue a client certificate for a facade caller, saved under the CLI cert directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		serverName, _ := cmd.Flags().GetString("server-name")
		clientID, _ := cmd.Flags().GetString("client-id")

		certDir, err := security.GetCertDir("catalogd", serverName)
		if err != nil {
			return fmt.Errorf("resolve cert directory: %w", err)
		}
		if !security.CAExists(certDir) {
			return fmt.Errorf("no CA found at %s; run 'catalogd cert init' first", certDir)
		}

		caCert, err := security.LoadCACertFromFile(certDir)
		if err != nil {
			return fmt.Errorf("load CA certificate: %w", err)
		}
		caKey, err := security.LoadCAKeyFromFile(certDir)
		if err != nil {
			return fmt.Errorf("load CA key: %w", err)
		}

		ca := security.NewCertAuthority()
		ca.LoadRoot(caCert, caKey)

		cert, err := ca.IssueClientCertificate(clientID)
		if err != nil {
			return fmt.Errorf("issue client certificate: %w", err)
		}
		if _, ok := ca.GetCachedCert(clientID); !ok {
			return fmt.Errorf("client certificate for %q was issued but not cached", clientID)
		}

		cliDir, err := security.GetCLICertDir()
		if err != nil {
			return fmt.Errorf("resolve CLI cert directory: %w", err)
		}
		if err := security.SaveCertToFile(cert, cliDir); err != nil {
			return fmt.Errorf("save client certificate: %w", err)
		}

		fmt.Printf("client certificate for %q written to %s\n", clientID, cliDir)
		return nil
	},
}

var certRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Delete the CA and server certificates for this server-name, forcing a future 'cert init' to regenerate",
	RunE: func(cmd *cobra.Command, args []string) error {
		serverName, _ := cmd.Flags().GetString("server-name")

		certDir, err := security.GetCertDir("catalogd", serverName)
		if err != nil {
			return fmt.Errorf("resolve cert directory: %w", err)
		}
		if err := security.RemoveCerts(certDir); err != nil {
			return fmt.Errorf("remove certs at %s: %w", certDir, err)
		}
		fmt.Printf("removed %s\n", certDir)
		return nil
	},
}

func init() {
	certInitCmd.Flags().String("server-name", "server1", "Identity the facade server certificate is issued for")
	certInitCmd.Flags().StringSlice("hosts", []string{"localhost", "127.0.0.1"}, "DNS names / IP addresses the server certificate covers")
	certStatusCmd.Flags().String("server-name", "server1", "Identity whose certificate status to report")
	certClientCmd.Flags().String("server-name", "server1", "Identity of the CA issuing the client certificate")
	certClientCmd.Flags().String("client-id", "cli", "CommonName the client certificate (and authorization principal) is issued for")
	certRemoveCmd.Flags().String("server-name", "server1", "Identity whose certificates to remove")

	certCmd.AddCommand(certInitCmd, certStatusCmd, certClientCmd, certRemoveCmd)
}
