package api

import "net/http"

// handleChannelStatus reports every registered channel and whether its
// adapter came up enabled. Lets operators see at a glance which credentials
// are missing.
func (s *Server) handleChannelStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.notificationSvc.ChannelStatus())
}
