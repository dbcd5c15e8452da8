package viewer

import "html/template"

// staticAsset is a file served under assets/.
type staticAsset struct {
	contentType string
	body        string
}

var assets = map[string]staticAsset{
	"app.js":    {contentType: "text/javascript; charset=utf-8", body: jsContent},
	"style.css": {contentType: "text/css; charset=utf-8", body: cssContent},
}

func parseTemplates() (*template.Template, error) {
	t := template.New("viewer")
	if _, err := t.New("page").Parse(pageTemplate); err != nil {
		return nil, err
	}
	if _, err := t.New("content").Parse(contentTemplate); err != nil {
		return nil, err
	}
	return t, nil
}

// pageTemplate is the full viewer page for an initial load.
const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Content.Title}} | {{.SiteTitle}}</title>
  <link rel="stylesheet" href="{{.BasePath}}assets/style.css">
  <link rel="stylesheet" href="{{.BasePath}}assets/chroma.css">
</head>
<body data-base="{{.BasePath}}" data-session="{{.SessionID}}"{{if .LiveReload}} data-reload="{{.BasePath}}ws/reload"{{end}}>
  <header class="top-bar">
    <button class="menu-toggle" id="menu" aria-label="Toggle navigation">
      <svg width="24" height="24" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2">
        <line x1="3" y1="6" x2="21" y2="6"/><line x1="3" y1="12" x2="21" y2="12"/><line x1="3" y1="18" x2="21" y2="18"/>
      </svg>
    </button>
    <h1 class="site-title">{{.SiteTitle}}</h1>
  </header>
  <nav id="nav" class="sidebar">
    {{.Tree}}
  </nav>
  <main id="content" class="content">
    {{template "content" .Content}}
  </main>
  <script id="initial-entry" type="application/json">{{.Entry}}</script>
  <script src="{{.BasePath}}assets/app.js"></script>
</body>
</html>
`

// contentTemplate renders one lecture into the content pane.
const contentTemplate = `<h2 id="video-title">{{.Title}}</h2>
{{if .EmbedURL}}<iframe id="player" src="{{.EmbedURL}}" frameborder="0" allowfullscreen allow="autoplay; encrypted-media"></iframe>
{{end}}<div id="md" class="markdown-body{{if .NotFound}} not-found{{end}}">{{.Body}}{{.Footer}}</div>
`

const cssContent = `:root {
  --sidebar-width: 320px;
  --accent: #2962ff;
  --border: #e1e4e8;
  --bg-sidebar: #f6f8fa;
  --text: #24292e;
}
* { box-sizing: border-box; }
body {
  margin: 0;
  font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Helvetica, Arial, sans-serif;
  color: var(--text);
}
.top-bar {
  display: flex;
  align-items: center;
  gap: 12px;
  padding: 8px 16px;
  border-bottom: 1px solid var(--border);
}
.site-title { font-size: 1.2rem; margin: 0; }
.menu-toggle { display: none; background: none; border: 0; cursor: pointer; }
.sidebar {
  position: fixed;
  top: 49px;
  bottom: 0;
  width: var(--sidebar-width);
  overflow-y: auto;
  background: var(--bg-sidebar);
  border-right: 1px solid var(--border);
}
.sidebar ul { list-style: none; margin: 0; padding: 0; }
.chapter-toggle {
  display: block;
  padding: 10px 16px;
  font-weight: 600;
  cursor: pointer;
}
.chapter .lectures { display: none; }
.chapter.expanded .lectures { display: block; }
.lectures a {
  display: block;
  padding: 6px 16px 6px 32px;
  color: var(--text);
  text-decoration: none;
}
.lectures a:hover { background: #eaeef2; }
.lectures a.active { color: #fff; background: var(--accent); }
.content {
  margin-left: var(--sidebar-width);
  padding: 16px 32px;
  max-width: 1000px;
}
#player { width: 100%; aspect-ratio: 16 / 9; }
.markdown-body pre { padding: 12px; overflow-x: auto; border-radius: 6px; }
.markdown-body mark { background: #fff3b0; color: inherit; }
#star-github { margin-top: 32px; padding-top: 16px; border-top: 1px solid var(--border); }
@media (max-width: 800px) {
  .menu-toggle { display: block; }
  .sidebar { display: none; width: 100%; z-index: 10; }
  .sidebar.show { display: block; }
  .content { margin-left: 0; padding: 16px; }
}
`

const jsContent = `(function () {
  "use strict";

  var body = document.body;
  var base = body.dataset.base;
  var session = body.dataset.session;
  var latest = 0;

  var initial = JSON.parse(document.getElementById("initial-entry").textContent);
  if (history.replaceState) {
    history.replaceState(initial, "", location.href);
  }

  // persisted is the selection of the latest applied navigate response.
  var persisted = null;

  function send(path, payload) {
    return fetch(base + "api/" + path, {
      method: "POST",
      credentials: "same-origin",
      headers: { "Content-Type": "application/json", "X-Session-ID": session },
      body: JSON.stringify(payload)
    }).then(function (res) {
      if (res.status === 204) return null;
      if (!res.ok) return Promise.reject(res.status);
      return res.json();
    });
  }

  // restoreSelection stores the shown selection again after a stale
  // navigate response overwrote the cookie.
  function restoreSelection() {
    var sel = persisted;
    send("navigate", { chapter: sel.chapter, lecture: sel.lecture, seq: sel.seq }).then(function () {
      if (persisted.seq !== sel.seq && persisted.seq === latest) restoreSelection();
    });
  }

  function post(path, payload) {
    latest += 1;
    payload.seq = latest;
    return send(path, payload).then(function (data) {
      if (!data) return null;
      if (data.seq !== latest) {
        // Only the latest request may update the page. A stale navigate
        // still set the cookie; if the latest one already landed, undo it.
        if (path === "navigate" && persisted && persisted.seq === latest) restoreSelection();
        return null;
      }
      if (path === "navigate") {
        persisted = { seq: data.seq, chapter: payload.chapter, lecture: payload.lecture };
      }
      return data;
    });
  }

  function focus(id) {
    var prev = document.querySelector("#nav a.active");
    if (prev) prev.classList.remove("active");
    if (!id) return;
    var link = document.getElementById(id);
    if (!link) return;
    link.classList.add("active");
    var chapter = link.closest(".chapter");
    if (chapter) chapter.classList.add("expanded");
    link.focus();
  }

  function show(data) {
    document.getElementById("content").innerHTML = data.content;
    document.title = data.title + " | " + document.title.split(" | ").pop();
    var title = document.getElementById("video-title");
    if (title) title.scrollIntoView();
  }

  var nav = document.getElementById("nav");
  nav.addEventListener("click", function (e) {
    var toggle = e.target.closest(".chapter-toggle");
    if (toggle) {
      toggle.parentElement.classList.toggle("expanded");
      return;
    }
    var link = e.target.closest("a[data-chapter]");
    if (!link) return;
    e.preventDefault();
    focus(link.id);
    if (window.innerWidth <= 800) nav.classList.toggle("show");
    post("navigate", {
      chapter: Number(link.dataset.chapter),
      lecture: Number(link.dataset.lecture)
    }).then(function (data) {
      if (!data) return;
      if (data.history === "push" && history.pushState) {
        history.pushState(data.entry, "", data.entry.url);
      }
      show(data);
    });
  });

  document.getElementById("menu").addEventListener("click", function () {
    nav.classList.toggle("show");
  });

  window.addEventListener("popstate", function (e) {
    if (!e.state) return;
    post("pop", { entry: e.state }).then(function (data) {
      if (!data) return;
      show(data);
      focus(data.focus);
    });
  });

  if (body.dataset.reload && window.WebSocket) {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + body.dataset.reload);
    ws.onmessage = function () { location.reload(); };
  }
})();
`
