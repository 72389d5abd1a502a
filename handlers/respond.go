package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"serenity/database"
	"serenity/utils"
)

// respondError maps the normalized error taxonomy onto HTTP status
// codes. The classification is done by the data layer; this is the only
// place that translates it.
func respondError(c *gin.Context, err error) {
	switch {
	case database.IsInvalidID(err) || database.IsValidation(err):
		utils.JSONError(c, http.StatusBadRequest, "invalid request", err.Error())
	case database.IsNotFound(err):
		utils.JSONError(c, http.StatusNotFound, "not found", err.Error())
	case database.IsConflict(err):
		utils.JSONError(c, http.StatusConflict, "conflict", err.Error())
	case database.IsConnection(err):
		utils.JSONError(c, http.StatusServiceUnavailable, "store unavailable", err.Error())
	default:
		utils.JSONError(c, http.StatusInternalServerError, "internal error", err.Error())
	}
}

// listOptions reads the common pagination and sort query parameters.
func listOptions(c *gin.Context, defaultSort string) database.ListOptions {
	opts := database.ListOptions{SortField: defaultSort}
	if sort := c.Query("sort"); sort != "" {
		opts.SortField = sort
	}
	opts.SortAsc = c.Query("order") != "desc"
	if limit, err := strconv.ParseInt(c.Query("limit"), 10, 64); err == nil && limit > 0 {
		opts.Limit = limit
	}
	if skip, err := strconv.ParseInt(c.Query("skip"), 10, 64); err == nil && skip > 0 {
		opts.Skip = skip
	}
	return opts
}
