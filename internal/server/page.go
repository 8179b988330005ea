package server

const indexHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Attendance Assistant</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 720px; margin: 2rem auto; color: #1f2937; }
#log { border: 1px solid #cbd5e1; border-radius: 8px; height: 480px; overflow-y: auto; padding: 1rem; }
.msg { white-space: pre-wrap; margin: .5rem 0; }
.me { color: #1d4ed8; }
form { display: flex; gap: .5rem; margin-top: 1rem; }
input { flex: 1; padding: .5rem; }
#dl { display: none; margin-top: .75rem; }
</style>
</head>
<body>
<h1>Attendance Assistant</h1>
<div id="log"></div>
<form id="f">
<input id="m" autocomplete="off" placeholder="Tell me what you worked on or ask for your timesheet...">
<button>Send</button>
</form>
<a id="dl" href="/api/timesheet/download">📥 Download Timesheet</a>
<script>
const log = document.getElementById("log");
function add(text, cls) {
  const d = document.createElement("div");
  d.className = "msg " + (cls || "");
  d.textContent = text;
  log.appendChild(d);
  log.scrollTop = log.scrollHeight;
}
document.getElementById("f").addEventListener("submit", async (e) => {
  e.preventDefault();
  const input = document.getElementById("m");
  const message = input.value.trim();
  if (!message) return;
  input.value = "";
  add(message, "me");
  const res = await fetch("/api/chat", {
    method: "POST",
    headers: {"Content-Type": "application/json"},
    body: JSON.stringify({message}),
  });
  const body = await res.json();
  add(body.response || body.error);
  document.getElementById("dl").style.display = body.download ? "inline-block" : "none";
});
</script>
</body>
</html>
`
