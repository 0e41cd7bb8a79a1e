/*
Package security provides the mTLS certificate machinery the Request
Facade's gRPC listener and its callers authenticate with.

# Architecture

	┌──────────────────┐        ┌──────────────────┐
	│   CertAuthority  │        │  File persistence │
	│  (Root + leaf)   │───────▶│  (certs.go)       │
	└──────────────────┘        └──────────────────┘
	   RSA 4096-bit root           PEM files under
	   10-year validity            ~/.catalogd/certs

# Certificate Authority

CertAuthority holds an in-memory root key pair and issues leaf
certificates from it:

  - IssueServerCertificate for the facade's own listener, scoped to a
    service identity and a set of DNS names/IP addresses.
  - IssueClientCertificate for a caller; the certificate's CommonName
    becomes the principal an authz.PrivilegeRequest is evaluated
    against.

Both leaf certificate kinds are RSA 2048-bit with a 90-day validity,
short enough that CertNeedsRotation (see below) gives an operator
advance warning before expiry.

The CA does not persist itself: LoadRoot installs a previously issued
root certificate and key (e.g. ones reloaded from PEM files via
LoadCACertFromFile/LoadCAKeyFromFile), so a process restart can either
mint a fresh root or continue trusting the same one, at the operator's
choice.

# Certificate file persistence

certs.go stores and loads PEM-encoded certificates and keys from a
directory on disk:

  - SaveCertToFile/LoadCertFromFile round-trip a leaf certificate plus
    its private key (node.crt/node.key).
  - SaveCACertToFile/LoadCACertFromFile and SaveCAKeyToFile/
    LoadCAKeyFromFile round-trip the root certificate and key
    (ca.crt/ca.key) separately, since a caller verifying a peer only
    ever needs the certificate half.
  - GetCertDir/GetCLICertDir compute the conventional per-identity and
    CLI certificate directories under the user's home directory.

# Rotation

CertNeedsRotation reports true once less than 30 days remain before a
certificate's NotAfter. GetCertExpiry and GetCertTimeRemaining expose
the raw expiry so a caller can log or alert on it; ValidateCertChain
confirms a certificate was actually signed by a given root before
relying on it.
*/
package security
