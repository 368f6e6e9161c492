package framework

const analystSystemPrompt = `You are a senior business strategy consultant. Analyze the client's situation using the requested framework and return a structured JSON response. Be specific to the client's business and industry. Do not invent facts; mark uncertain findings with a "confidence" of "low".`

const pestlePrompt = `Run a PESTLE macro-environment scan for this business and return a JSON object with exactly these fields:

{
  "political": [{"factor": "...", "impact": "positive|negative|neutral", "confidence": "low|medium|high"}],
  "economic": [...],
  "social": [...],
  "technological": [...],
  "legal": [...],
  "environmental": [...],
  "summary": {"headline": "one-sentence takeaway", "key_risks": ["..."], "key_opportunities": ["..."]},
  "entities": ["market, regulator, or competitor names mentioned"],
  "references": [{"title": "...", "url": "", "snippet": "supporting observation"}]
}`

const portersPrompt = `Run a Porter's Five Forces competitive scan for this business and return a JSON object with exactly these fields:

{
  "rivalry": {"intensity": "low|medium|high", "drivers": ["..."]},
  "new_entrants": {"intensity": "low|medium|high", "drivers": ["..."]},
  "substitutes": {"intensity": "low|medium|high", "drivers": ["..."]},
  "buyer_power": {"intensity": "low|medium|high", "drivers": ["..."]},
  "supplier_power": {"intensity": "low|medium|high", "drivers": ["..."]},
  "summary": {"headline": "one-sentence takeaway", "attractiveness": "low|medium|high"},
  "entities": ["competitor or supplier names mentioned"],
  "references": [{"title": "...", "url": "", "snippet": "supporting observation"}]
}`

const swotPrompt = `Run a SWOT scan for this business and return a JSON object with exactly these fields:

{
  "strengths": [{"item": "...", "evidence": "..."}],
  "weaknesses": [{"item": "...", "evidence": "..."}],
  "opportunities": [{"item": "...", "evidence": "..."}],
  "threats": [{"item": "...", "evidence": "..."}],
  "summary": {"headline": "one-sentence takeaway", "posture": "offensive|defensive|balanced"},
  "entities": ["named capabilities, assets, or rivals"],
  "references": [{"title": "...", "url": "", "snippet": "supporting observation"}]
}`

const bmcPrompt = `Draft a Business Model Canvas for this business and return a JSON object with exactly these fields:

{
  "customer_segments": ["..."],
  "value_propositions": ["..."],
  "channels": ["..."],
  "customer_relationships": ["..."],
  "revenue_streams": ["..."],
  "key_resources": ["..."],
  "key_activities": ["..."],
  "key_partnerships": ["..."],
  "cost_structure": ["..."],
  "summary": {"headline": "one-sentence takeaway", "viability": "low|medium|high"},
  "entities": ["named partners, channels, or segments"],
  "references": [{"title": "...", "url": "", "snippet": "supporting observation"}]
}`

const rootCausePrompt = `Build a root-cause decomposition tree for the client's stated problem and return a JSON object with exactly these fields:

{
  "problem": "the problem statement being decomposed",
  "tree": {"cause": "...", "children": [{"cause": "...", "children": []}]},
  "candidate_root_causes": [{"cause": "...", "confidence": "low|medium|high"}],
  "summary": {"headline": "one-sentence takeaway"},
  "finalized": false,
  "entities": ["named processes, teams, or systems implicated"],
  "references": [{"title": "...", "url": "", "snippet": "supporting observation"}]
}

Set "finalized" to false; the tree is a draft until the user confirms it.`
