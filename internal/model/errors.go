package model

import "errors"

// 流水线错误分类：除 ErrNoDataFromAnySource 外都在记录或适配器范围内消化
var (
	ErrUnparsableTimestamp    = errors.New("unparsable timestamp")
	ErrSourceUnreachable      = errors.New("source unreachable")
	ErrSourceTimeout          = errors.New("source timeout")
	ErrMalformedSourcePayload = errors.New("malformed source payload")
	ErrValidationFailure      = errors.New("validation failure")
	ErrReconciliationFailure  = errors.New("reconciliation failure")
	ErrNoDataFromAnySource    = errors.New("no data from any source")
)
