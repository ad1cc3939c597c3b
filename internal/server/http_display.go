package server

import "fmt"

// displayServerInfo shows server configuration information
func (s *Server) displayServerInfo() {
	s.displayEndpoints()
	s.displayCORSInfo()
	s.displayRequestLimitInfo()
}

// displayEndpoints shows available API endpoints
func (s *Server) displayEndpoints() {
	fmt.Println("Available endpoints:")
	fmt.Println("  GET     /health       - Health check")
	fmt.Println("  POST    /api/analyze  - Analyze a job posting against a resume")
	fmt.Println("  OPTIONS /api/analyze  - CORS preflight")
}

// displayCORSInfo shows the cross-origin policy
func (s *Server) displayCORSInfo() {
	fmt.Printf("CORS allowed origin: %s\n", s.AllowedOrigin)
	if s.AllowedOrigin == "*" {
		fmt.Println("WARNING: any origin may call the API; each call spends the configured API key quota")
	}
}

// displayRequestLimitInfo shows request size limit configuration
func (s *Server) displayRequestLimitInfo() {
	if s.MaxRequestSize > 0 {
		fmt.Printf("Request size limit: %d bytes (%.1f MB)\n", s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024))
	} else {
		fmt.Println("Request size limit: DISABLED")
		fmt.Println("WARNING: No request size limits configured!")
	}
}
