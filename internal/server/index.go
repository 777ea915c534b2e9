package server

import (
	"fmt"
	"net/http"
)

// indexHTML is the viewer page: an image element bound to the MJPEG feed,
// a retry handler that reloads the feed with a cache-busting query after a
// 5 second delay, and a once-per-second streaming status ticker.
const indexHTML = `<!DOCTYPE html>
<html>
  <head>
    <title>Raspberry Pi Camera Stream</title>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
      body { font-family: Arial, sans-serif; margin: 0; padding: 20px; text-align: center; background-color: #f5f5f5; }
      h1 { color: #333; }
      .video-container { margin: 20px auto; max-width: 800px; background-color: #000; padding: 10px; border-radius: 5px; box-shadow: 0 4px 6px rgba(0,0,0,0.1); }
      img { width: 100%; border: 1px solid #ddd; }
      .status { color: #666; margin-top: 10px; background-color: #fff; padding: 5px; border-radius: 3px; }
    </style>
    <script>
      function handleImageError() {
        document.getElementById('status').innerHTML = '<span style="color:red">Cannot reach the camera feed. Retrying in 5 seconds...</span>';
        setTimeout(function() {
          var img = document.getElementById('stream');
          img.src = '/video_feed?t=' + new Date().getTime();
        }, 5000);
      }

      setInterval(function() {
        var status = document.getElementById('status');
        var dotCount = (status.innerText.match(/\./g) || []).length;
        if (dotCount > 5) {
          status.innerText = 'Streaming';
        } else {
          status.innerText = status.innerText + '.';
        }
      }, 1000);
    </script>
  </head>
  <body>
    <h1>Raspberry Pi Camera Stream</h1>
    <div class="video-container">
      <img id="stream" src="/video_feed" alt="camera stream" onerror="handleImageError()">
    </div>
    <p id="status" class="status">Streaming</p>
  </body>
</html>
`

// handleIndex serves the viewer page at the root path.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}
