// Package frame holds the data model of the transport: pixel formats, frame
// geometry and its byte size, rational frame rates and pooled packets.
package frame
