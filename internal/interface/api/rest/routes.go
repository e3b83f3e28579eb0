package rest

const (
	// api
	RouteApiV1 = "/api/v1"

	// files
	RouteFiles      = RouteApiV1 + "/files"
	RouteFile       = RouteFiles + "/:file_id"
	RouteFileShares = RouteFile + "/share"
	RouteFileShare  = RouteFileShares + "/:user_id"

	// scheduler webhook
	RouteExpiryHook = RouteApiV1 + "/hooks/expiry"

	// ops
	RouteHealth  = RouteApiV1 + "/healthz"
	RouteMetrics = RouteApiV1 + "/metrics"
)
