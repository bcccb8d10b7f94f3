// Package station holds the registry of radio stations served by the proxy
// and builds the backend URLs for each of them.
//
// All stations share one backend host. Metadata and downloads go through the
// backend API port, while each station streams from its own port.
package station
