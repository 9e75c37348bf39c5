// Package staging manages the local working directory rebuilt from the build
// server before each platform is processed. The remote copy itself is
// delegated to scp, invoked synchronously.
package staging
