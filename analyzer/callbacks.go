package analyzer

// Progress describes how far a decode run has got.
// Passed to ProgressCallback after every transaction.
type Progress struct {
	// Sample is the last sample covered by the finished transaction
	Sample uint64

	// Transactions is the number of transactions decoded so far
	Transactions int

	// Frames is the number of frames emitted so far
	Frames int
}

// ProgressCallback is called after every transaction to report progress.
// Implementations should return quickly to avoid stalling the decoder.
//
// Example:
//
//	a := analyzer.New(dict, c,
//	    analyzer.WithProgressCallback(func(p analyzer.Progress) {
//	        fmt.Printf("sample %d: %d transactions\n", p.Sample, p.Transactions)
//	    }),
//	)
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to the analyzer.
// This allows integration with any logging framework.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
//
//	a := analyzer.New(dict, c, analyzer.WithLogger(&StdLogger{}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
