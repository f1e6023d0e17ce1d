// Package transport builds the outbound HTTP clients used by searchcrawl.
//
// Pages and media are fetched directly by default. When a proxy address is
// configured every connection is dialed through that SOCKS5 proxy instead,
// which lets the crawler run behind Tor or an SSH tunnel. Every request
// carries the configured User-Agent.
package transport
