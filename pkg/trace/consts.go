package trace

// Trace syntax.
const (
	CommentPrefix = "#"

	KeywordAlloc      = "alloc"
	KeywordAllocShort = "a"
	KeywordFree       = "free"
	KeywordFreeShort  = "f"
	KeywordCheck      = "check"
)

// Scanner sizing.
const (
	ScannerInitialBufferSize = 4 * 1024
	ScannerMaxLineSize       = 64 * 1024
	InitialOpCapacity        = 64
)
