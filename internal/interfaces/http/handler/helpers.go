package handler

import "time"

// timeFormat is the timestamp format used in API responses
const timeFormat = time.RFC3339
