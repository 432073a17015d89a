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
}

type TypedError[MT any] interface {
	Error
	WithMetadata(MT) TypedError[MT]
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

func (e *ErrorImpl[MT]) WithMetadata(metadata MT) TypedError[MT] {
	e.metadata = metadata
	return e
}

type InvalidFieldsMetadata struct {
	MessageType   string   `json:"message_type"`
	InvalidFields []string `json:"invalid_fields"`
}

type InvalidAddressMetadata struct {
	Address string `json:"address"`
}

type IdentifierMismatchMetadata struct {
	AssetUuid    string `json:"asset_uuid"`
	ScopeAddress string `json:"scope_address"`
}

type RecordMetadata struct {
	RecordType string `json:"record_type"`
	Key        string `json:"key"`
}

type AssetTypeMetadata struct {
	AssetType string `json:"asset_type"`
}

type VerifierMetadata struct {
	AssetType       string `json:"asset_type"`
	VerifierAddress string `json:"verifier_address"`
}

type ScopeMetadata struct {
	ScopeAddress string `json:"scope_address"`
}

type PendingVerificationMetadata struct {
	ScopeAddress    string `json:"scope_address"`
	VerifierAddress string `json:"verifier_address"`
}

type AlreadyVerifiedMetadata struct {
	ScopeAddress string `json:"scope_address"`
	Status       string `json:"status"`
}

type UnauthorizedVerifierMetadata struct {
	ScopeAddress            string `json:"scope_address"`
	VerifierAddress         string `json:"verifier_address"`
	ExpectedVerifierAddress string `json:"expected_verifier_address"`
}

type InvalidFundsMetadata struct {
	ExpectedFunds string `json:"expected_funds"`
	ActualFunds   string `json:"actual_funds"`
}

type UnexpectedStateMetadata struct {
	AssetType string `json:"asset_type"`
	Expected  bool   `json:"expected"`
	Actual    bool   `json:"actual"`
}

type ScopeAttributeCountMetadata struct {
	ScopeAddress   string `json:"scope_address"`
	AttributeCount int    `json:"attribute_count"`
}

var INTERNAL_ERROR = Code[map[string]any]{0, "INTERNAL_ERROR", http.StatusInternalServerError}

var INVALID_MESSAGE_FIELDS = Code[InvalidFieldsMetadata]{
	1,
	"INVALID_MESSAGE_FIELDS",
	http.StatusBadRequest,
}

var INVALID_ADDRESS = Code[InvalidAddressMetadata]{2, "INVALID_ADDRESS", http.StatusBadRequest}

var ASSET_IDENTIFIER_NOT_SUPPLIED = Code[map[string]any]{
	3,
	"ASSET_IDENTIFIER_NOT_SUPPLIED",
	http.StatusBadRequest,
}

var ASSET_IDENTIFIER_MISMATCH = Code[IdentifierMismatchMetadata]{
	4,
	"ASSET_IDENTIFIER_MISMATCH",
	http.StatusBadRequest,
}

var RECORD_NOT_FOUND = Code[RecordMetadata]{5, "RECORD_NOT_FOUND", http.StatusNotFound}
var RECORD_ALREADY_EXISTS = Code[RecordMetadata]{6, "RECORD_ALREADY_EXISTS", http.StatusConflict}

var DUPLICATE_VERIFIER_PROVIDED = Code[VerifierMetadata]{
	7,
	"DUPLICATE_VERIFIER_PROVIDED",
	http.StatusConflict,
}

var UNEXPECTED_STATE = Code[UnexpectedStateMetadata]{8, "UNEXPECTED_STATE", http.StatusConflict}

var UNSUPPORTED_ASSET_TYPE = Code[AssetTypeMetadata]{
	9,
	"UNSUPPORTED_ASSET_TYPE",
	http.StatusBadRequest,
}
var ASSET_TYPE_DISABLED = Code[AssetTypeMetadata]{10, "ASSET_TYPE_DISABLED", http.StatusConflict}
var UNSUPPORTED_VERIFIER = Code[VerifierMetadata]{11, "UNSUPPORTED_VERIFIER", http.StatusBadRequest}

var ASSET_NOT_FOUND = Code[ScopeMetadata]{12, "ASSET_NOT_FOUND", http.StatusNotFound}

var ASSET_PENDING_VERIFICATION = Code[PendingVerificationMetadata]{
	13,
	"ASSET_PENDING_VERIFICATION",
	http.StatusConflict,
}

var ASSET_ALREADY_ONBOARDED = Code[ScopeMetadata]{
	14,
	"ASSET_ALREADY_ONBOARDED",
	http.StatusConflict,
}

var ASSET_ALREADY_VERIFIED = Code[AlreadyVerifiedMetadata]{
	15,
	"ASSET_ALREADY_VERIFIED",
	http.StatusConflict,
}

var UNAUTHORIZED = Code[map[string]any]{16, "UNAUTHORIZED", http.StatusForbidden}

var UNAUTHORIZED_ASSET_VERIFIER = Code[UnauthorizedVerifierMetadata]{
	17,
	"UNAUTHORIZED_ASSET_VERIFIER",
	http.StatusForbidden,
}

var INVALID_FUNDS = Code[InvalidFundsMetadata]{18, "INVALID_FUNDS", http.StatusBadRequest}

var INVALID_SCOPE_ATTRIBUTE = Code[ScopeAttributeCountMetadata]{
	19,
	"INVALID_SCOPE_ATTRIBUTE",
	http.StatusInternalServerError,
}
