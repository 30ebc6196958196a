/*
Package algorithms provides algorithm implementations shared across the
service.

Highlights:
  - Rate Limiting: in-process token bucket (pkg/algorithms/ratelimit)
*/
package algorithms
