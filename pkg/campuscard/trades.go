package campuscard

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/eshaffer321/campuscard-go/internal/cipher"
	internalTypes "github.com/eshaffer321/campuscard-go/internal/types"
	"github.com/pkg/errors"
)

// tradeService implements the TradeService interface
type tradeService struct {
	client *Client
}

// Query returns a trade query builder
func (s *tradeService) Query() TradeQueryBuilder {
	return &tradeQueryBuilder{
		client:      s.client,
		idSerial:    s.client.options.IDSerial,
		serviceHall: s.client.options.ServiceHall,
		tradeType:   s.client.options.TradeType,
		pageSize:    s.client.options.PageSize,
	}
}

// tradeQueryBuilder implements TradeQueryBuilder
type tradeQueryBuilder struct {
	client      *Client
	start       time.Time
	end         time.Time
	idSerial    string
	serviceHall string
	tradeType   string
	pageNumber  int
	pageSize    int
}

func (b *tradeQueryBuilder) Between(start, end time.Time) TradeQueryBuilder {
	b.start = start
	b.end = end
	return b
}

func (b *tradeQueryBuilder) WithTradeType(tradeType string) TradeQueryBuilder {
	b.tradeType = tradeType
	return b
}

func (b *tradeQueryBuilder) WithCredentials(idSerial, serviceHall string) TradeQueryBuilder {
	if idSerial != "" {
		b.idSerial = idSerial
	}
	if serviceHall != "" {
		b.serviceHall = serviceHall
	}
	return b
}

func (b *tradeQueryBuilder) Page(number, size int) TradeQueryBuilder {
	b.pageNumber = number
	b.pageSize = size
	return b
}

// validate checks the query before any network call
func (b *tradeQueryBuilder) validate() error {
	var errs []*ValidationError

	if b.idSerial == "" {
		errs = append(errs, &ValidationError{Field: "idserial", Message: "identity is required"})
	}
	if b.serviceHall == "" {
		errs = append(errs, &ValidationError{Field: "servicehall", Message: "servicehall credential is required"})
	}
	if b.start.IsZero() || b.end.IsZero() {
		errs = append(errs, &ValidationError{Field: "period", Message: "start and end dates are required"})
	} else if b.start.After(b.end) {
		errs = append(errs, &ValidationError{
			Field:   "period",
			Message: "start date is after end date",
			Value:   NewDate(b.start).String() + ".." + NewDate(b.end).String(),
		})
	}
	if b.pageNumber < 0 {
		errs = append(errs, &ValidationError{Field: "pageNumber", Message: "must not be negative", Value: b.pageNumber})
	}

	if len(errs) > 0 {
		return &ValidationErrors{Errors: errs}
	}
	return nil
}

// Execute runs the query: one exchange, then decryption of the payload
func (b *tradeQueryBuilder) Execute(ctx context.Context) (*RecordSet, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	env, err := b.client.transport.Fetch(ctx, &internalTypes.TradeRequest{
		PageNumber:  b.pageNumber,
		PageSize:    b.pageSize,
		Start:       b.start,
		End:         b.end,
		IDSerial:    b.idSerial,
		TradeType:   b.tradeType,
		ServiceHall: b.serviceHall,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch trade list")
	}

	rs := &RecordSet{Message: env.Message}
	if !env.HasData() {
		return rs, nil
	}

	log := b.client.logger()

	text, openErr := cipher.Open(env.Data)
	if openErr != nil {
		log.Warn("payload could not be decrypted, treating as empty", "error", openErr, "msg", env.Message)
		text = cipher.EmptyDocument
	} else {
		rs.Decrypted = true
	}

	rows, err := parseTradePayload(text)
	if err != nil {
		return nil, err
	}
	rs.Rows = rows

	log.Debug("trade list decrypted", "rows", len(rows))
	return rs, nil
}

// tradePayload is the decrypted document
type tradePayload struct {
	ResultData *struct {
		Rows []RawRecord `json:"rows"`
	} `json:"resultData"`
}

// parseTradePayload decodes the decrypted JSON keeping numbers exact.
// A document without resultData.rows, or one that is not an object, is an
// empty set.
func parseTradePayload(text string) ([]RawRecord, error) {
	doc := bytes.TrimSpace([]byte(text))
	if len(doc) > 0 && doc[0] != '{' && json.Valid(doc) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()

	var payload tradePayload
	if err := dec.Decode(&payload); err != nil {
		return nil, &Error{
			Code:    "UNEXPECTED_PAYLOAD",
			Message: "decrypted payload is not the expected JSON document",
			Err:     errors.Wrap(ErrUnexpectedResponse, err.Error()),
		}
	}

	if payload.ResultData == nil {
		return nil, nil
	}
	return payload.ResultData.Rows, nil
}
