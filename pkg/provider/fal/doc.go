// Package fal implements the Provider interface for the fal.ai queue
// API. A generation runs through three HTTP round trips: submit the
// arguments payload to the queue, poll the returned status URL until the
// queue reports completion, then fetch the terminal response. The queue
// holds all state server-side, so the client keeps none between
// invocations and the credential travels with each request.
package fal
