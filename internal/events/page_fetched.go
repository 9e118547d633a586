package events

// PageFetchedTopic is published after each detail page fetch completes,
// successful or not.
const PageFetchedTopic = "detailpage:fetched"

type PageFetched struct {
	URL        string
	StatusCode int
}
