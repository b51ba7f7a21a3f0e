package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// Code is the type representing a namespace error code.
type Code[MT any] struct {
	Code       uint16
	Name       string
	HTTPStatus int
}

// New creates a new error with the given code and the message
func (c Code[MT]) New(msg string, args ...any) TypedError[MT] {
	return &ErrorImpl[MT]{
		code:  c,
		cause: fmt.Errorf(msg, args...),
	}
}

// Wrap creates a new Error with the given code and the cause error
func (c Code[MT]) Wrap(cause error) TypedError[MT] {
	return &ErrorImpl[MT]{
		code:  c,
		cause: cause,
	}
}

func (c Code[MT]) String() string {
	return fmt.Sprintf("%s (%d)", c.Name, c.Code)
}

type Error interface {
	error
	Log() *log.Entry
	Code() uint16
	CodeName() string
	HTTPStatus() int
	Metadata() map[string]string
	// Details returns the typed metadata as is, for json encoding.
	Details() any
	Message() string
	Unwrap() error
}

type TypedError[MT any] interface {
	Error
	WithMetadata(MT) TypedError[MT]
	TypedMetadata() MT
}

// ErrorImpl is the default concrete implementation of TypedError.
type ErrorImpl[MT any] struct {
	code     Code[MT]
	cause    error
	metadata MT
}

func (e *ErrorImpl[MT]) Log() *log.Entry {
	return log.WithField("name", e.code.Name).
		WithField("code", e.code.Code).
		WithField("metadata", e.metadata)
}

func (e *ErrorImpl[MT]) Metadata() map[string]string {
	// convert any metadata to map[string]string
	metadata := make(map[string]string)
	buf, err := json.Marshal(e.metadata)
	if err == nil {
		var genericMap map[string]any
		if err := json.Unmarshal(buf, &genericMap); err == nil {
			for k, v := range genericMap {
				vStr := ""
				if v != nil {
					vStr = fmt.Sprintf("%v", v)
				}
				metadata[k] = vStr
			}
		}
	}
	return metadata
}

func (e *ErrorImpl[MT]) Details() any {
	return e.metadata
}

// Message is the error text without the code prefix.
func (e *ErrorImpl[MT]) Message() string {
	if e.cause == nil {
		return e.code.Name
	}
	return e.cause.Error()
}

func (e *ErrorImpl[MT]) TypedMetadata() MT {
	return e.metadata
}

func (e *ErrorImpl[MT]) HTTPStatus() int {
	return e.code.HTTPStatus
}

func (e *ErrorImpl[MT]) Code() uint16 {
	return e.code.Code
}

func (e *ErrorImpl[MT]) CodeName() string {
	return e.code.Name
}

// Error() implements the error interface.
func (e *ErrorImpl[MT]) Error() string {
	return fmt.Sprintf("%s: %s", e.code.String(), e.cause.Error())
}

func (e *ErrorImpl[MT]) Unwrap() error {
	return e.cause
}

func (e *ErrorImpl[MT]) WithMetadata(metadata MT) TypedError[MT] {
	e.metadata = metadata
	return e
}

// Is reports whether err carries the given code.
func Is[MT any](err error, code Code[MT]) bool {
	for err != nil {
		if typed, ok := err.(Error); ok && typed.Code() == code.Code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

type ConfigMetadata struct {
	Field string `json:"field"`
}

type StatusCodeMetadata struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body,omitempty"`
}

// MintRejectedMetadata lets the caller find the already pinned assets of a
// mint the marketplace refused.
type MintRejectedMetadata struct {
	RequestId   string `json:"requestId"`
	ImageUri    string `json:"imageUri"`
	MetadataUri string `json:"metadataUri"`
	StatusCode  int    `json:"statusCode"`
	Body        string `json:"body,omitempty"`
}

type PublishMetadata struct {
	Name string `json:"name"`
}

type MnemonicMetadata struct {
	WordCount int `json:"word_count"`
}

type BalanceMetadata struct {
	Have string `json:"have"`
	Need string `json:"need"`
}

type TransferMetadata struct {
	FromWallet  string `json:"from_wallet"`
	Destination string `json:"destination"`
	Seqno       uint32 `json:"seqno"`
}

type RecordMetadata struct {
	RequestId string `json:"request_id"`
}

var INTERNAL_ERROR = Code[map[string]any]{0, "INTERNAL_ERROR", http.StatusInternalServerError}
var INVALID_REQUEST = Code[map[string]any]{1, "INVALID_REQUEST", http.StatusBadRequest}

var CONFIGURATION_MISSING = Code[ConfigMetadata]{
	2,
	"CONFIGURATION_MISSING",
	http.StatusInternalServerError,
}

var UNRECOGNIZED_OUTPUT_SHAPE = Code[any]{
	3,
	"UNRECOGNIZED_OUTPUT_SHAPE",
	http.StatusBadGateway,
}

var ASSET_DOWNLOAD_FAILED = Code[StatusCodeMetadata]{
	4,
	"ASSET_DOWNLOAD_FAILED",
	http.StatusBadGateway,
}
var PUBLISH_FAILED = Code[PublishMetadata]{5, "PUBLISH_FAILED", http.StatusBadGateway}
var MINT_REJECTED = Code[MintRejectedMetadata]{6, "MINT_REJECTED", http.StatusBadGateway}

var MINT_STATUS_CHECK_FAILED = Code[StatusCodeMetadata]{
	7,
	"MINT_STATUS_CHECK_FAILED",
	http.StatusBadGateway,
}
var INVALID_MNEMONIC = Code[MnemonicMetadata]{8, "INVALID_MNEMONIC", http.StatusInternalServerError}
var INSUFFICIENT_BALANCE = Code[BalanceMetadata]{9, "INSUFFICIENT_BALANCE", http.StatusBadRequest}

var TRANSFER_SUBMISSION_FAILED = Code[TransferMetadata]{
	10,
	"TRANSFER_SUBMISSION_FAILED",
	http.StatusBadGateway,
}

var RECORD_STORE_WRITE_FAILED = Code[RecordMetadata]{
	11,
	"RECORD_STORE_WRITE_FAILED",
	http.StatusInternalServerError,
}
var RECORD_NOT_FOUND = Code[RecordMetadata]{12, "RECORD_NOT_FOUND", http.StatusNotFound}
var GENERATION_FAILED = Code[map[string]any]{13, "GENERATION_FAILED", http.StatusBadGateway}
var TRANSFER_PENDING = Code[TransferMetadata]{14, "TRANSFER_PENDING", http.StatusConflict}
