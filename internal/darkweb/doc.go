// Package darkweb provides the Tor transport for dark-web source scanners.
//
// Dark-web indexes live on .onion hosts, so every request must go through
// a Tor SOCKS5 proxy. The package supports two modes:
//
//   - An external Tor daemon, addressed by its SOCKS port. CheckConnection
//     verifies the proxy actually speaks SOCKS5 before a scan depends on it.
//   - An embedded Tor daemon managed through tornago, for deployments
//     without a system Tor installation. Bootstrap takes 1-3 minutes.
//
// Scanners never touch this package directly: they receive a plain
// *http.Client from Proxy.HTTPClient and stay transport-agnostic, which is
// also what makes them testable against httptest servers.
package darkweb
