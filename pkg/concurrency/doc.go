/*
Package concurrency provides concurrency primitives shared across the
service.

Features:
  - Semaphore: weighted semaphore, used to bound the AMQP connection pool
*/
package concurrency
