package metrics

const (
	SimComputationsH   = "The total number of inference cycles computed successfully"
	SimComputationsN   = "waterquality_sim_computations"
	SimComputeSecondsH = "The duration of inference cycles in seconds"
	SimComputeSecondsN = "waterquality_sim_compute_seconds"
	SimFailuresH       = "The total number of inference cycles that failed, by kind"
	SimFailuresN       = "waterquality_sim_failures"
	SimWarningsH       = "The total number of crisp inputs set outside their variable domain"
	SimWarningsN       = "waterquality_sim_domain_warnings"

	ServerCacheEntriesH = "The current number of cached evaluation responses"
	ServerCacheEntriesN = "waterquality_server_cache_entries"
	ServerCacheHitsH    = "The total number of evaluation requests served from the cache"
	ServerCacheHitsN    = "waterquality_server_cache_hits"
	ServerReqsFailedH   = "The total number of evaluation requests that failed"
	ServerReqsFailedN   = "waterquality_server_reqs_failed"
	ServerReqsReceivedH = "The total number of evaluation requests received"
	ServerReqsReceivedN = "waterquality_server_reqs_received"
	ServerReqsServedH   = "The total number of evaluation requests served"
	ServerReqsServedN   = "waterquality_server_reqs_served"

	SurfacePointsFailedH = "The total number of surface grid points without a defined output"
	SurfacePointsFailedN = "waterquality_surface_points_failed"
	SurfacePointsH       = "The total number of surface grid points evaluated"
	SurfacePointsN       = "waterquality_surface_points"
)
