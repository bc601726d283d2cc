// Package server answers option queries over http in the envelope the client expects.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"picklist/client"
	nt "picklist/entity"
	"picklist/fetch"
)

// Querier specifies the backing option store.
type Querier interface {
	Query(ctx context.Context, table string, filter nt.Filter, offset int, limit nt.Limit) (items []nt.Item, count int, err error)
}

// Server serves GET /<table> from a Querier.
type Server struct {
	querier Querier
	logger  nt.Logger
}

// New creates a Server.
func New(querier Querier, lgr nt.Logger) *Server {
	return &Server{
		querier: querier,
		logger:  lgr,
	}
}

// ServeHTTP answers one option query.
func (srv *Server) ServeHTTP(writer http.ResponseWriter, request *http.Request) {

	ctx := request.Context()

	if request.Method != http.MethodGet {
		srv.respond(ctx, writer, http.StatusMethodNotAllowed, client.Envelope{
			Status:  http.StatusMethodNotAllowed,
			Message: "only GET is supported",
		})
		return
	}

	table := strings.Trim(request.URL.Path, "/")

	query, err := fetch.Decode(request.URL.Query())
	if err != nil {
		srv.logger.Error(ctx, "bad option query", err, "table", table)
		srv.respond(ctx, writer, http.StatusBadRequest, client.Envelope{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
		return
	}

	env, err := srv.answer(ctx, table, query)
	if err != nil {
		srv.logger.Error(ctx, "failed to query options", err, "table", table)
		srv.respond(ctx, writer, http.StatusInternalServerError, client.Envelope{
			Status:  http.StatusInternalServerError,
			Message: "failed to query options",
		})
		return
	}

	srv.logger.Info(ctx, "answered option query",
		"table", table, "start", query.Start, "limit", query.Limit.String(), "count", env.Count, "total", env.Total,
	)
	srv.respond(ctx, writer, http.StatusOK, env)
}

// Filter combines the filters, search and params of a query.
// Params match by equality, each search term must match at least one of the fields.
func Filter(query nt.Query) (filter nt.Filter) {

	filters := append([]nt.Filter{}, query.Filters...)

	for key, val := range query.Params {
		filters = append(filters, nt.Filter{Field: key, Op: nt.Eq, Value: val})
	}

	for _, term := range query.Search {
		if term == "" || len(query.Fields) == 0 {
			continue
		}

		anyField := nt.Filter{Op: nt.Or}
		for _, field := range query.Fields {
			anyField.Children = append(anyField.Children, nt.Filter{Field: field, Op: nt.Contains, Value: term})
		}
		filters = append(filters, anyField)
	}

	filter = nt.AndFilter(filters...)
	return
}

// Paginate works out page counts for a window onto total items.
func Paginate(start int, limit nt.Limit, total int) (page, pages int) {

	if limit <= 0 {
		page, pages = 1, 1
		return
	}

	size := int(limit)
	pages = (total + size - 1) / size
	page = start/size + 1
	return
}

// unexported

func (srv *Server) answer(ctx context.Context, table string, query nt.Query) (env client.Envelope, err error) {

	limit := query.Limit
	if limit == 0 {
		limit = nt.All
	}

	items, total, err := srv.querier.Query(ctx, table, Filter(query), query.Start, limit)
	if err != nil {
		return
	}

	data, err := json.Marshal(items)
	if err != nil {
		err = errors.Wrapf(err, "failed to marshal items")
		return
	}

	page, pages := Paginate(query.Start, limit, total)

	env = client.Envelope{
		Success: true,
		Status:  http.StatusOK,
		Data:    data,
		Count:   len(items),
		Total:   total,
		Page:    page,
		Pages:   pages,
	}
	return
}

func (srv *Server) respond(ctx context.Context, writer http.ResponseWriter, status int, env client.Envelope) {

	data, err := json.Marshal(env)
	if err != nil {
		srv.logger.Error(ctx, "failed to marshal envelope", err)
		writer.WriteHeader(http.StatusInternalServerError)
		return
	}

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	writer.Write(data)
}
