package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/dzakcloud/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-g string   gRPC bind address (e.g., ":50051"); "" disables gRPC
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r string   Redis address for token revocation
//	-m string   comma separated admin e-mails
//	-i string   legacy import source (directory or s3://bucket/prefix)
//	-w string   static SPA directory
//	-l string   log level
//	-u string   S3 root user
//	-p string   S3 root password
//	-e string   S3 base endpoint
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with -c/-config.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-d", "-s", "-t", "-r", "-m", "-i", "-w", "-l", "-u", "-p", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port to run server")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC health address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	adminEmails := fs.String("m", strings.Join(config.AdminEmails, ","), "admin e-mails (comma separated)")
	fs.StringVar(&config.ImportSource, "i", config.ImportSource, "legacy import source")
	fs.StringVar(&config.StaticDir, "w", config.StaticDir, "static SPA directory")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// -t and -m only override earlier layers when passed explicitly; the
	// minute granularity of -t would otherwise truncate sub-minute TTLs.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
		case "m":
			config.AdminEmails = normalizeEmails(strings.Split(*adminEmails, ","))
			if len(config.AdminEmails) == 0 {
				config.AdminEmails = nil
			}
		}
	})
}
