package config

// DefaultYAML is written by "anthozoa config" when no config file exists.
const DefaultYAML = `# enable debug logging
debug: false

# Flow field renderer
field:
  # noise seed; the same seed always draws the same field
  seed: 0
  # distance between grid points in pixels (0 draws a blank frame)
  grid_spacing: 20
  # half length of each stroke in pixels
  segment_length: 8
  # noise zoom; smaller is smoother
  noise_scale: 0.005
  # noise time advance per millisecond
  noise_time_speed: 0.0002
  stroke_weight: 1.5
  stroke_color: "#8fd3c9"
  background_color: "#1a1a1a"
  # hold the current frame
  frozen: false
  # color strokes by noise value around hue_center
  dynamic_color: false
  hue_center: 180
  hue_spread: 120

# Offline asset cache ("anthozoa serve")
offline:
  prefix: "anthozoa"
  # bump to start a new cache generation; older ones are deleted on activate
  version: 1
  origin: "http://localhost:8080"
  listen: "127.0.0.1:8787"
  assets:
    - "/"
    - "/index.html"
    - "/anthozoa.css"
    - "/manifest.json"
    - "/icons/icon-192.png"
    - "/icons/icon-512.png"
    - "https://cdnjs.cloudflare.com/ajax/libs/p5.js/1.9.0/p5.min.js"
    - "https://fonts.googleapis.com/css2?family=Oswald:wght@400;700&display=swap"
  # memory, disk or sqlite
  storage: "disk"
  # dir: "~/.cache/anthozoa/offline"
  concurrency: 4
  requests_per_second: 10
  timeout: "30s"
  memory_capacity: 33554432
  disk_capacity: 536870912
  # zstd level, 0 stores entries uncompressed
  compression_level: 3
  # entries older than ttl are refetched; unset keeps them until evicted
  # ttl: "168h"
  cleanup_interval: "10m"
`
